package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

type OrderEmailLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
}

type OrderEmail struct {
	CustomerName string
	Email        string
	OrderID      string
	TrackingID   string
	Date         string
	Time         string
	Address      string
	Price        float64
	Lines        []OrderEmailLine
}

var orderTemplate = template.Must(template.New("order").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<html>
  <head>
    <style>
      body { font-family: Arial, sans-serif; margin: 0; padding: 0; background-color: #f4f7fc; }
      .container { max-width: 700px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; padding: 25px; }
      h1 { font-size: 24px; color: #2c6b3d; text-align: center; }
      h3 { font-size: 18px; color: #333; border-bottom: 2px solid #2c6b3d; padding-bottom: 8px; }
      table { width: 100%; border-collapse: collapse; }
      th { text-align: left; background-color: #2c6b3d; color: white; padding: 10px; }
      td { padding: 10px; border-bottom: 1px solid #ddd; }
      .footer { text-align: center; font-size: 12px; color: #888; margin-top: 20px; }
    </style>
  </head>
  <body>
    <div class="container">
      <h1>Thank you for your order, {{.CustomerName}}!</h1>
      <p>Your order has been placed and is being processed.</p>

      <div class="order-summary">
        <h3>Order Summary</h3>
        <table>
          <tr><th>Order ID</th><td>{{.OrderID}}</td></tr>
          <tr><th>Tracking ID</th><td>{{.TrackingID}}</td></tr>
          <tr><th>Date</th><td>{{.Date}}</td></tr>
          <tr><th>Time</th><td>{{.Time}}</td></tr>
          <tr><th>Total Price</th><td>{{money .Price}}</td></tr>
        </table>
      </div>

      <div class="shipping-details">
        <h3>Shipping Details</h3>
        <table>
          <tr><th>Name</th><td>{{.CustomerName}}</td></tr>
          <tr><th>Email</th><td>{{.Email}}</td></tr>
          <tr><th>Address</th><td>{{.Address}}</td></tr>
        </table>
      </div>

      <div class="order-items">
        <h3>Products Ordered</h3>
        <table>
          <thead>
            <tr><th>Product ID</th><th>Product Name</th><th>Quantity</th><th>Unit Price</th></tr>
          </thead>
          <tbody>
            {{- range .Lines}}
            <tr><td>{{.ProductID}}</td><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{money .UnitPrice}}</td></tr>
            {{- end}}
          </tbody>
        </table>
      </div>

      <p>If you have any questions about your order, feel free to <a href="mailto:support@merabestie.com">contact us</a>.</p>
      <div class="footer">
        <p>Thank you for shopping with us!</p>
      </div>
    </div>
  </body>
</html>
`))

// RenderOrderConfirmation returns the HTML body of the confirmation email.
func RenderOrderConfirmation(e OrderEmail) (string, error) {
	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, e); err != nil {
		return "", fmt.Errorf("render order email: %w", err)
	}
	return buf.String(), nil
}

// OrderConfirmation renders e into a ready-to-send message.
func OrderConfirmation(e OrderEmail) (Message, error) {
	body, err := RenderOrderConfirmation(e)
	if err != nil {
		return Message{}, err
	}
	return Message{To: e.Email, Subject: SubjectOrderConfirmation, HTML: body}, nil
}
