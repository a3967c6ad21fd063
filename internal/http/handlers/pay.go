package handlers

import (
	"html/template"
	"net/http"

	"server/internal/middleware"
)

var payTemplate = template.Must(template.New("pay").Parse(`<!doctype html>
<html lang="{{.Locale}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 420px; margin: 48px auto; padding: 0 16px; }
h1 { font-size: 1.3rem; }
.notice { color: #666; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
{{if .ClientID}}
<div id="paypal-button-container"></div>
<script src="https://www.paypal.com/sdk/js?client-id={{.ClientID}}&currency=USD"></script>
<script>
paypal.Buttons({
  createOrder: function(data, actions) {
    return actions.order.create({
      purchase_units: [{ amount: { value: '0.99', currency_code: 'USD' } }]
    });
  },
  onApprove: function(data, actions) {
    return actions.order.capture().then(function() {
      window.location.search = '?orderId=' + data.orderID + '&done=1';
    });
  }
}).render('#paypal-button-container');
</script>
{{else}}
<p class="notice">{{.Unavailable}}</p>
{{end}}
</body>
</html>
`))

type payPageData struct {
	Locale      string
	Title       string
	Description string
	Unavailable string
	ClientID    string
}

// Pay serves the checkout page. The copy follows the locale resolved by the
// locale middleware; everything else is identical between languages.
func (a *App) Pay(w http.ResponseWriter, r *http.Request) {
	data := payPageData{
		Locale:      middleware.LocaleFromContext(r.Context()),
		ClientID:    a.Cfg.PayPalClientID,
		Title:       "Buy image credits",
		Description: "US$0.99 adds 200 credits to your account. Each image edit uses 10 credits.",
		Unavailable: "Payments are not available right now.",
	}
	if data.Locale == "ko" {
		data.Title = "이미지 크레딧 구매"
		data.Description = "US$0.99 결제 시 200 크레딧이 충전됩니다. 이미지 편집 1회에 10 크레딧이 사용됩니다."
		data.Unavailable = "현재 결제를 이용할 수 없습니다."
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := payTemplate.Execute(w, data); err != nil {
		a.Logger.Error().Err(err).Msg("pay page render failed")
	}
}
