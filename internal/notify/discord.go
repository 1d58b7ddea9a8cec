// Package notify posts operational messages to a Discord webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Discord Embed Structures (based on documentation)
type EmbedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"` // ISO8601 timestamp
	Color       int          `json:"color,omitempty"`     // Decimal color code
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// WebhookPayload is the structure Discord expects for webhook requests with embeds
type WebhookPayload struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content,omitempty"`
	Embeds   []Embed `json:"embeds"`
}

const (
	ColorRed   = 0xFF0000
	ColorGreen = 0x00FF00
)

// Notifier delivers embeds to a webhook. The zero value and a nil
// *Notifier are valid and drop every message.
type Notifier struct {
	webhookURL string
	username   string
	client     *http.Client
}

// NewDiscord returns a Notifier for webhookURL. An empty URL disables it.
func NewDiscord(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		username:   "Study Assistant Notifier",
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Enabled reports whether messages are actually sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.webhookURL != ""
}

// Notify sends embed in the background so callers never wait on Discord.
func (n *Notifier) Notify(embed Embed) {
	if !n.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := n.Send(ctx, embed); err != nil {
			log.Error().Err(err).Msg("failed to send Discord notification")
		}
	}()
}

// Send delivers embed and waits for Discord's answer.
func (n *Notifier) Send(ctx context.Context, embed Embed) error {
	if !n.Enabled() {
		return nil
	}
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().Format(time.RFC3339)
	}

	payload, err := json.Marshal(WebhookPayload{Username: n.username, Embeds: []Embed{embed}})
	if err != nil {
		return fmt.Errorf("failed to marshal Discord embed payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create Discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Discord notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord notification failed with status %d: %s", resp.StatusCode, body)
	}
	log.Debug().Str("title", embed.Title).Msg("sent Discord notification")
	return nil
}

// ErrorEmbed describes a failed API request.
func ErrorEmbed(action string, err error, status int, path, userID string) Embed {
	embed := Embed{
		Title:       "API Error: " + action,
		Description: fmt.Sprintf("**Error Details:**\n```%s```", err.Error()),
		Color:       ColorRed,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if userID != "" {
		embed.Fields = append(embed.Fields, EmbedField{Name: "User ID", Value: fmt.Sprintf("`%s`", userID), Inline: true})
	}
	embed.Fields = append(embed.Fields,
		EmbedField{Name: "HTTP Status", Value: fmt.Sprintf("%d", status), Inline: true},
		EmbedField{Name: "Path", Value: path},
	)
	return embed
}
