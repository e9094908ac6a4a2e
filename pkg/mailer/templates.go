package mailer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

// OrderEmailItem is a rendered order line.
type OrderEmailItem struct {
	Name        string
	Variant     string
	Quantity    int
	SubtotalUSD string
}

// OrderEmailData feeds the order email templates.
type OrderEmailData struct {
	OrderNumber    string
	CustomerName   string
	Items          []OrderEmailItem
	TotalUSD       string
	TrackingNumber string
}

// PasswordResetData feeds the password reset template.
type PasswordResetData struct {
	FullName string
	ResetURL string
}

var orderTemplate = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Helvetica,Arial,sans-serif;color:#111;">
  <h1 style="letter-spacing:2px;">SXO6LUXE</h1>
  <p>Hi {{.Data.CustomerName}},</p>
  <p>{{.Intro}}</p>
  <table width="100%" cellpadding="6" style="border-collapse:collapse;">
    {{range .Data.Items}}
    <tr style="border-bottom:1px solid #eee;">
      <td>{{.Name}}{{if .Variant}} ({{.Variant}}){{end}}</td>
      <td align="center">x{{.Quantity}}</td>
      <td align="right">${{.SubtotalUSD}}</td>
    </tr>
    {{end}}
    <tr>
      <td colspan="2" align="right"><strong>Total</strong></td>
      <td align="right"><strong>${{.Data.TotalUSD}}</strong></td>
    </tr>
  </table>
  {{if .Data.TrackingNumber}}<p>Tracking number: <strong>{{.Data.TrackingNumber}}</strong></p>{{end}}
  <p>Order number: {{.Data.OrderNumber}}</p>
  <p>Thank you for shopping with us.</p>
</body>
</html>`))

var passwordResetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Helvetica,Arial,sans-serif;color:#111;">
  <h1 style="letter-spacing:2px;">SXO6LUXE</h1>
  <p>Hi {{if .FullName}}{{.FullName}}{{else}}there{{end}},</p>
  <p>We received a request to reset your password. The link below is valid for one hour.</p>
  <p><a href="{{.ResetURL}}">Reset your password</a></p>
  <p>If you did not request this, you can ignore this email.</p>
</body>
</html>`))

var orderIntros = map[enums.EmailType]struct {
	subject string
	intro   string
}{
	enums.EmailTypeOrderConfirmation: {
		subject: "Order %s confirmed",
		intro:   "Thank you for your order. We have received your payment and are preparing your items.",
	},
	enums.EmailTypeOrderShipped: {
		subject: "Order %s has shipped",
		intro:   "Good news, your order is on its way.",
	},
	enums.EmailTypeOrderDelivered: {
		subject: "Order %s delivered",
		intro:   "Your order has been delivered. We hope you love it.",
	},
	enums.EmailTypeOrderCancelled: {
		subject: "Order %s cancelled",
		intro:   "Your order has been cancelled. If you were charged, a refund will follow.",
	},
}

// RenderOrderEmail renders the subject and HTML body for an order event.
func RenderOrderEmail(emailType enums.EmailType, data OrderEmailData) (string, string, error) {
	meta, ok := orderIntros[emailType]
	if !ok {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no order template for email type %q", emailType))
	}

	var buf strings.Builder
	err := orderTemplate.Execute(&buf, struct {
		Intro string
		Data  OrderEmailData
	}{Intro: meta.intro, Data: data})
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render order email")
	}

	return fmt.Sprintf(meta.subject, data.OrderNumber), buf.String(), nil
}

// RenderPasswordReset renders the password reset email.
func RenderPasswordReset(data PasswordResetData) (string, string, error) {
	var buf strings.Builder
	if err := passwordResetTemplate.Execute(&buf, data); err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render password reset email")
	}
	return "Reset your SXO6LUXE password", buf.String(), nil
}
