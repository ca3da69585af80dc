package channel

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/baechuer/orderflow/internal/application/notify"
)

const smsMaxLen = 160

type emailTemplate struct {
	subject string
	body    *htmltemplate.Template
}

var funcs = map[string]any{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"line":  func(q int, p float64) string { return fmt.Sprintf("$%.2f", float64(q)*p) },
	"short": shortID,
}

var emailTemplates = map[notify.NotificationType]emailTemplate{
	notify.KindConfirmation: {
		subject: "Order confirmed: #%s",
		body: htmltemplate.Must(htmltemplate.New("confirmation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #4CAF50;">Thanks for your order, {{.CustomerName}}!</h1>
		<p>Order <strong>#{{short .OrderID}}</strong> has been received and is {{.Status}}.</p>
		<table style="width: 100%; border-collapse: collapse;">
			{{range .Items}}<tr><td>{{.Title}}</td><td>x{{.Quantity}}</td><td style="text-align: right;">{{line .Quantity .Price}}</td></tr>
			{{end}}<tr><td colspan="2"><strong>Total</strong></td><td style="text-align: right;"><strong>{{money .TotalAmount}}</strong></td></tr>
		</table>
		<hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
		<p style="color: #999; font-size: 12px;">This is an automated message, please do not reply.</p>
	</div>
</body>
</html>`)),
	},
	notify.KindStatusUpdate: {
		subject: "Order #%s status update",
		body: htmltemplate.Must(htmltemplate.New("status").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #2196F3;">Your order is now {{.Status}}</h1>
		<p>Hello {{.CustomerName}},</p>
		<p>Order <strong>#{{short .OrderID}}</strong>{{if .PreviousStatus}} moved from {{.PreviousStatus}}{{end}} to {{.Status}}.</p>
		<hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
		<p style="color: #999; font-size: 12px;">This is an automated message, please do not reply.</p>
	</div>
</body>
</html>`)),
	},
	notify.KindCancellation: {
		subject: "Order #%s cancelled",
		body: htmltemplate.Must(htmltemplate.New("cancellation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #F44336;">Order cancelled</h1>
		<p>Hello {{.CustomerName}},</p>
		<p>Order <strong>#{{short .OrderID}}</strong> has been cancelled.{{if .Reason}} Reason: {{.Reason}}.{{end}}</p>
		<hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
		<p style="color: #999; font-size: 12px;">This is an automated message, please do not reply.</p>
	</div>
</body>
</html>`)),
	},
}

var smsTemplate = texttemplate.Must(texttemplate.New("sms").Funcs(funcs).Parse(
	`{{if eq .Kind "CONFIRMATION"}}Hi {{.N.CustomerName}}, order #{{short .N.OrderID}} confirmed. Total {{money .N.TotalAmount}}.` +
		`{{else if eq .Kind "STATUS_UPDATE"}}Order #{{short .N.OrderID}} is now {{.N.Status}}.` +
		`{{else}}Order #{{short .N.OrderID}} was cancelled.{{if .N.Reason}} {{.N.Reason}}{{end}}{{end}}`,
))

func renderEmail(kind notify.NotificationType, n notify.OrderNotice) (subject, body string, err error) {
	t, ok := emailTemplates[kind]
	if !ok {
		return "", "", fmt.Errorf("no email template for %s", kind)
	}
	var buf strings.Builder
	if err := t.body.Execute(&buf, n); err != nil {
		return "", "", fmt.Errorf("failed to execute template: %w", err)
	}
	return fmt.Sprintf(t.subject, shortID(n.OrderID)), buf.String(), nil
}

func renderSMS(kind notify.NotificationType, n notify.OrderNotice) (string, error) {
	var buf strings.Builder
	data := struct {
		Kind string
		N    notify.OrderNotice
	}{Kind: string(kind), N: n}
	if err := smsTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	msg := buf.String()
	if r := []rune(msg); len(r) > smsMaxLen {
		msg = string(r[:smsMaxLen-1]) + "…"
	}
	return msg, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
