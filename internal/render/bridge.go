package render

import "time"

type RedrawMode int

const (
	RedrawAnimated RedrawMode = iota
	RedrawImmediate
)

// Bridge — императивная поверхность рендера. Сама отрисовка вне скоупа,
// нам от неё нужны только запись диапазона и перерисовка.
// Сырые zoomChanged/panChanged с моста UI-слой заводит в
// Controller.HandleZoomChanged / HandlePanChanged / HandleTap.
type Bridge interface {
	SetVisibleRange(min, max time.Time)
	Redraw(mode RedrawMode)
	CurrentVisibleRange() (min, max time.Time)
}
