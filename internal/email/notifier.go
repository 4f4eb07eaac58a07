package email

import (
	"fmt"

	"burnlink_backend/internal/config"

	"gopkg.in/gomail.v2"
)

// Notifier отправляет владельцу уведомления о событиях его burn-записей.
// Уведомления best-effort: ошибка отправки логируется вызывающим кодом
// и никогда не влияет на результат операции.
type Notifier interface {
	// NotifyDownload - файл был скачан
	NotifyDownload(to, fileName string, remainingDownloads int, wasFinal bool) error
}

// SMTPNotifier реализует Notifier через gomail
type SMTPNotifier struct {
	cfg *config.Config
}

func NewSMTPNotifier(cfg *config.Config) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) NotifyDownload(to, fileName string, remainingDownloads int, wasFinal bool) error {
	body := fmt.Sprintf("<p>Ваш файл <b>%s</b> был скачан.</p>", fileName)
	if wasFinal {
		body += "<p>Это было последнее скачивание. Файл уничтожен.</p>"
	} else if remainingDownloads >= 0 {
		body += fmt.Sprintf("<p>Осталось скачиваний: %d.</p>", remainingDownloads)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.Email.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Файл %s был скачан", fileName))
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		n.cfg.Email.SMTPHost,
		n.cfg.Email.SMTPPort,
		n.cfg.Email.SMTPUsername,
		n.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(m)
}

// NoopNotifier - заглушка, когда email выключен в конфиге
type NoopNotifier struct{}

func (NoopNotifier) NotifyDownload(to, fileName string, remainingDownloads int, wasFinal bool) error {
	return nil
}
