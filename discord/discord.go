// Package discord is a minimal REST client for the pieces of the Discord
// API the panel needs: publishing an embed, editing it in place, and
// sending user/channel messages.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"slotboard/models"
	"slotboard/slotstore"
)

const apiBase = "https://discord.com/api/v10"

type Embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
	Image       *struct {
		URL string `json:"url"`
	} `json:"image,omitempty"`
}

type Client struct {
	token string
	http  *http.Client
	store slotstore.Store
}

// NewClient reads the bot token from DISCORD_TOKEN. A client with an
// empty token is valid and silently skips all sends, so the core works
// without a Discord presence.
func NewClient(store slotstore.Store) *Client {
	return &Client{
		token: os.Getenv("DISCORD_TOKEN"),
		http:  &http.Client{Timeout: 10 * time.Second},
		store: store,
	}
}

func (c *Client) enabled() bool { return c.token != "" }

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, apiBase+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord %s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// SendEmbed posts an embed to a channel and returns the message id.
func (c *Client) SendEmbed(ctx context.Context, channelID string, embed Embed) (string, error) {
	if !c.enabled() {
		return "", nil
	}
	var msg struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/channels/"+channelID+"/messages",
		map[string]any{"embeds": []Embed{embed}}, &msg)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// EditEmbed replaces the embed on an existing message.
func (c *Client) EditEmbed(ctx context.Context, channelID, messageID string, embed Embed) error {
	if !c.enabled() {
		return nil
	}
	return c.do(ctx, http.MethodPatch, "/channels/"+channelID+"/messages/"+messageID,
		map[string]any{"embeds": []Embed{embed}}, nil)
}

// SendDM opens a DM channel with the user and delivers the embed. A
// closed-DM failure is the user's choice, not ours; callers treat it as
// best-effort.
func (c *Client) SendDM(ctx context.Context, userID string, embed Embed) error {
	if !c.enabled() {
		return nil
	}
	var ch struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/users/@me/channels",
		map[string]string{"recipient_id": userID}, &ch)
	if err != nil {
		return err
	}
	_, err = c.SendEmbed(ctx, ch.ID, embed)
	return err
}

// PanelEmbed renders the view model as a Discord embed.
func PanelEmbed(view models.ViewModel) Embed {
	var b strings.Builder
	for _, s := range view.Slots {
		b.WriteString(s.Label)
		b.WriteString("\n")
	}
	e := Embed{
		Title:       view.Title,
		Description: b.String(),
		Color:       0x3498db,
	}
	if view.Image != "" {
		e.Image = &struct {
			URL string `json:"url"`
		}{URL: view.Image}
	}
	return e
}

// Push edits the panel's published message to match the fresh rendering.
// Implements panel.Surface. Publishes a new message when the panel has a
// channel but no message yet, persisting the handle for restarts.
func (c *Client) Push(ctx context.Context, panel models.Panel, view models.ViewModel) error {
	if !c.enabled() || panel.ChannelID == "" {
		return nil
	}

	embed := PanelEmbed(view)
	if panel.MessageID == "" {
		msgID, err := c.SendEmbed(ctx, panel.ChannelID, embed)
		if err != nil {
			return err
		}
		return c.store.SetDisplayHandle(ctx, panel.PanelID, panel.ChannelID, msgID)
	}
	return c.EditEmbed(ctx, panel.ChannelID, panel.MessageID, embed)
}
