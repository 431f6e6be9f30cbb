package notification

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Notify(userID int, orderID *int, kind, title, message string) (Notification, error) {
	return s.repo.Create(Notification{
		UserID:  userID,
		OrderID: orderID,
		Type:    kind,
		Title:   title,
		Message: message,
	})
}

func (s *Service) ListForUser(userID int) ([]Notification, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) MarkRead(notificationID, userID int) (Notification, error) {
	return s.repo.MarkRead(notificationID, userID)
}
