package tide

import (
	"time"

	"chart_client/internal/camera"
	"chart_client/internal/models"
)

// Input — снимок всего, что нужно для расчёта следующего вьюпорта.
type Input struct {
	Prev   models.Viewport
	Mode   camera.Mode
	First  time.Time // самый ранний загруженный бар
	Newest time.Time // время последнего бара
	// Fresh — первый расчёт после сброса: растягиваем на весь диапазон.
	Fresh bool
	// Margin — небольшой запас справа от последнего бара при скольжении.
	Margin time.Duration
}

// Next — чистая функция прилива: предыдущий снимок + режим камеры +
// время свежего бара -> следующий вьюпорт. Вызывается на каждый апдейт
// бара перед перерисовкой.
func Next(in Input) models.Viewport {
	switch in.Mode {
	case camera.ModeLocked, camera.ModeInteracting, camera.ModeFirstLoad:
		// лок — заморожено; жест — вьюпорт ведёт дебаунсер;
		// первая загрузка — рекомендация бэкфилла уже применена
		return in.Prev
	}

	if in.Fresh || in.Prev.IsZero() || !in.Prev.Valid() {
		return models.Viewport{Min: in.First, Max: in.Newest}
	}

	// скольжение вперёд: спан сохраняем, max прижимаем к свежему бару
	span := in.Prev.Span()
	max := in.Newest.Add(in.Margin)
	min := max.Add(-span)
	if min.Before(in.First) {
		min = in.First
	}
	return models.Viewport{Min: min, Max: max}
}
