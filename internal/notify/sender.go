package notify

import "go.uber.org/zap"

// Sender is the final delivery hop for a fired reminder.
type Sender interface {
	Send(req Request) error
}

// LogSender writes fired reminders to the log. It is the fallback delivery
// when no external channel is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(req Request) error {
	s.logger.Info("reminder fired",
		zap.String("id", req.ID),
		zap.String("title", req.Title),
		zap.String("body", req.Body),
	)
	return nil
}
