package engine

func panPointerDown(en *Engine, ctx *Context) error {
	en.drag = dragState{active: true, lastX: ctx.Event.X, lastY: ctx.Event.Y}
	return nil
}

func panPointerMove(en *Engine, ctx *Context) error {
	if !en.drag.active {
		return nil
	}
	en.camera.Pan(ctx.Event.X-en.drag.lastX, ctx.Event.Y-en.drag.lastY)
	en.drag.lastX = ctx.Event.X
	en.drag.lastY = ctx.Event.Y
	return nil
}

func panPointerUp(en *Engine, _ *Context) error {
	en.drag = dragState{}
	return nil
}
