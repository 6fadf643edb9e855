package surface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/blackwater-gg/craftworks/pkg/config"
	"github.com/blackwater-gg/craftworks/pkg/db/models"
	pkgerrors "github.com/blackwater-gg/craftworks/pkg/errors"
	"github.com/blackwater-gg/craftworks/pkg/logger"
)

type discordSurface struct {
	client  *http.Client
	baseURL string
	token   string
	logg    *logger.Logger
}

// NewDiscord returns a Surface backed by the Discord REST API.
func NewDiscord(cfg config.SurfaceConfig, logg *logger.Logger) (Surface, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("surface bot token required")
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("surface api base url required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &discordSurface{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.APIBaseURL,
		token:   cfg.BotToken,
		logg:    logg,
	}, nil
}

type createMessageRequest struct {
	Embeds []Embed `json:"embeds"`
}

type createMessageResponse struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

func (d *discordSurface) Render(ctx context.Context, order *models.Order, channelID string) (Ref, error) {
	if order == nil {
		return Ref{}, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if channelID == "" {
		return Ref{}, pkgerrors.New(pkgerrors.CodeValidation, "channel id required")
	}

	payload, err := json.Marshal(createMessageRequest{Embeds: []Embed{OrderEmbed(order)}})
	if err != nil {
		return Ref{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode message payload")
	}

	url := fmt.Sprintf("%s/channels/%s/messages", d.baseURL, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Ref{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build message request")
	}
	req.Header.Set("Authorization", "Bot "+d.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return Ref{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post message")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Ref{}, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("post message returned status %d", resp.StatusCode))
	}

	var created createMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return Ref{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode message response")
	}
	if created.ChannelID == "" {
		created.ChannelID = channelID
	}
	return Ref{MessageID: created.ID, ChannelID: created.ChannelID}, nil
}

func (d *discordSurface) Remove(ctx context.Context, ref Ref) error {
	if ref.MessageID == "" || ref.ChannelID == "" {
		return nil
	}

	url := fmt.Sprintf("%s/channels/%s/messages/%s", d.baseURL, ref.ChannelID, ref.MessageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build delete request")
	}
	req.Header.Set("Authorization", "Bot "+d.token)

	resp, err := d.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete message")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	// The representation may already be gone; that is a success.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("delete message returned status %d", resp.StatusCode))
	}
	return nil
}
