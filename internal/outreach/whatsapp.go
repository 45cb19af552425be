// Package outreach WhatsApp deep links and ready-made messages
package outreach

import (
	"errors"
	"net/url"
	"strings"
	"time"

	parser "github.com/pulso-odonto/go-br-patient-parser"
)

// WhatsAppBase deep link host
const WhatsAppBase = "https://wa.me/"

// DelayStep pause between opening consecutive links
const DelayStep = 500 * time.Millisecond

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoRecipients = errors.New("no patients selected")
)

// Link deep link for one patient
type Link struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	URL       string `json:"url"`
	DelayMS   int64  `json:"delay_ms"` // when the client should open it
}

// WhatsAppURL builds https://wa.me/<phone>?text=<message>.
// The phone is normalized; the text is escaped like encodeURIComponent.
func WhatsAppURL(phone, message string) string {
	return WhatsAppBase + parser.NormalizePhone(phone) + "?text=" + encodeURIComponent(message)
}

// BuildLinks one link per patient, staggered by DelayStep
func BuildLinks(patients []parser.PatientRecord, message string) ([]Link, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if len(patients) == 0 {
		return nil, ErrNoRecipients
	}

	links := make([]Link, 0, len(patients))
	for i, p := range patients {
		links = append(links, Link{
			PatientID: p.ID,
			Name:      p.Name,
			Phone:     p.Phone,
			URL:       WhatsAppURL(p.Phone, message),
			DelayMS:   int64(i) * DelayStep.Milliseconds(),
		})
	}
	return links, nil
}

// encodeURIComponent QueryEscape writes spaces as "+", wa.me expects "%20".
// The unreserved marks !'()* are left as-is.
func encodeURIComponent(s string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	return uriMarks.Replace(escaped)
}

var uriMarks = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)
