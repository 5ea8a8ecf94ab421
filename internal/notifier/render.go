package notifier

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"

	"github.com/Houeta/pricewatch/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates
var templatesFs embed.FS

// maxSubjectTitle is the number of title characters kept in an email subject.
const maxSubjectTitle = 50

var printer = message.NewPrinter(language.English)

type emailContext struct {
	Heading      string
	ProductTitle string
	ProductURL   string
	CurrentPrice string
	TargetPrice  string
}

// Subject builds the email subject line for n.
func Subject(n models.Notification) string {
	title := Truncate(n.ProductTitle, maxSubjectTitle)
	if n.IsConfirmation() {
		return "🔔 Price Alert Set: " + title
	}
	return "🎉 Price Drop Alert: " + title
}

// RenderHTML renders the email body for n.
func RenderHTML(n models.Notification) (string, error) {
	name := "templates/price_drop.html.tpl"
	ctx := emailContext{Heading: "🎉 Price Drop Alert!"}
	if n.IsConfirmation() {
		name = "templates/confirmation.html.tpl"
		ctx = emailContext{Heading: "🔔 Price Alert Confirmed!"}
	}
	ctx.ProductTitle = n.ProductTitle
	ctx.ProductURL = n.ProductURL
	ctx.CurrentPrice = FormatPrice(n.Currency, n.CurrentPrice)
	ctx.TargetPrice = FormatPrice(n.Currency, n.TargetPrice)

	t, err := template.ParseFS(templatesFs, "templates/layout.html.tpl", name)
	if err != nil {
		return "", fmt.Errorf("failed to parse email templates: %w", err)
	}

	var buf bytes.Buffer
	if err = t.ExecuteTemplate(&buf, "layout", ctx); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}

	return buf.String(), nil
}

// FormatPrice prefixes currency and groups thousands, keeping two decimals for fractional amounts.
func FormatPrice(currency string, price float64) string {
	if price == math.Trunc(price) {
		return currency + printer.Sprintf("%d", int64(price))
	}
	return currency + printer.Sprintf("%.2f", price)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
