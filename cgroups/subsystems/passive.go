package subsystems

// PassiveController is attached for accounting or membership only: Resources has no
// section for its kind, so Apply never touches the kernel.
type PassiveController struct {
	controller
}

var _ Controller = &PassiveController{}

func NewPassiveController(kind ControllerKind, base, root string, v2 bool) *PassiveController {
	return &PassiveController{controller{kind: kind, base: base, root: root, v2: v2}}
}

func (s *PassiveController) Apply(*Resources) error {
	return nil
}
