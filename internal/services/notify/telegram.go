package notify

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Telegram delivers notifications through the Telegram Bot API.
type Telegram struct {
	http *resty.Client
}

// NewTelegram creates a notifier for the given bot token.
func NewTelegram(token string) *Telegram {
	http := resty.New().
		SetBaseURL("https://api.telegram.org/bot" + token).
		SetTimeout(15 * time.Second)
	return &Telegram{http: http}
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (t *Telegram) Send(ctx context.Context, recipient int64, text string) (string, error) {
	var out telegramResponse
	resp, err := t.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"chat_id": recipient,
			"text":    text,
		}).
		SetResult(&out).
		Post("/sendMessage")
	if err := apiError(resp, err, &out); err != nil {
		return "", fmt.Errorf("sendMessage to %d failed: %w", recipient, err)
	}
	return strconv.FormatInt(out.Result.MessageID, 10), nil
}

func (t *Telegram) SendPhoto(ctx context.Context, recipient int64, caption string, png []byte) (string, error) {
	var out telegramResponse
	resp, err := t.http.R().
		SetContext(ctx).
		SetFileReader("photo", "qr.png", bytes.NewReader(png)).
		SetFormData(map[string]string{
			"chat_id": strconv.FormatInt(recipient, 10),
			"caption": caption,
		}).
		SetResult(&out).
		Post("/sendPhoto")
	if err := apiError(resp, err, &out); err != nil {
		return "", fmt.Errorf("sendPhoto to %d failed: %w", recipient, err)
	}
	return strconv.FormatInt(out.Result.MessageID, 10), nil
}

func (t *Telegram) Edit(ctx context.Context, recipient int64, msgID, text string) error {
	var out telegramResponse
	resp, err := t.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"chat_id":    recipient,
			"message_id": msgID,
			"text":       text,
		}).
		SetResult(&out).
		Post("/editMessageText")
	if err := apiError(resp, err, &out); err != nil {
		return fmt.Errorf("editMessageText %s failed: %w", msgID, err)
	}
	return nil
}

func (t *Telegram) Delete(ctx context.Context, recipient int64, msgID string) error {
	var out telegramResponse
	resp, err := t.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"chat_id":    recipient,
			"message_id": msgID,
		}).
		SetResult(&out).
		Post("/deleteMessage")
	if err := apiError(resp, err, &out); err != nil {
		return fmt.Errorf("deleteMessage %s failed: %w", msgID, err)
	}
	return nil
}

func apiError(resp *resty.Response, err error, out *telegramResponse) error {
	if err != nil {
		return err
	}
	if resp.IsError() || !out.OK {
		return fmt.Errorf("telegram API error: %s", out.Description)
	}
	return nil
}
