package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer SMTP 出站邮件。发送失败不影响触发它的请求，
// 由调用方记日志后继续。
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

// SendVerification 注册后的验证邮件，链接带 user_id
func (m *Mailer) SendVerification(to string, userID uint) error {
	body := fmt.Sprintf("Please verify your account by visiting /users/verify/%d", userID)
	return m.send(to, "Verify your email", body)
}

// SendReset 密码重置邮件，正文带 token（15 分钟内有效）
func (m *Mailer) SendReset(to, resetToken string) error {
	body := fmt.Sprintf(
		"You requested a password reset. If this wasn't you, ignore this email.\n\n"+
			"Use the following link to reset your password:\n/users/reset-password?token=%s\n\n"+
			"Alternatively, copy this token and use it in the API:\n%s",
		resetToken, resetToken,
	)
	return m.send(to, "Password reset instructions", body)
}
