package handlers

// AppHandlers - контейнер готовых хендлеров для регистрации маршрутов
type AppHandlers struct {
	BurnHandler *BurnHandler
}
