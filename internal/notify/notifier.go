package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Summary carries the epoch completion facts worth broadcasting.
type Summary struct {
	Epoch       uint64
	Pulse       uint64
	Pool        decimal.Decimal
	Token       string
	OracleTruth float64
	MerkleRoot  string
	AgentCount  int
}

// Notifier delivers epoch completion summaries. Delivery failures never
// affect the run result; they are logged and dropped.
type Notifier interface {
	Notify(ctx context.Context, summary Summary) error
}

// TelegramNotifier pushes summaries through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "notify_telegram").Logger(),
	}
}

// Notify sends the epoch summary message.
func (t *TelegramNotifier) Notify(ctx context.Context, summary Summary) error {
	text := fmt.Sprintf(
		"Epoch %d complete\npool: %s %s\nagents: %d\noracle truth: %.2f\nmerkle root: %s",
		summary.Epoch, summary.Pool.String(), summary.Token, summary.AgentCount, summary.OracleTruth, summary.MerkleRoot,
	)
	if summary.Pulse != 0 {
		text = fmt.Sprintf("Epoch %d / pulse %d complete\npool: %s %s\nagents: %d\noracle truth: %.2f\nmerkle root: %s",
			summary.Epoch, summary.Pulse, summary.Pool.String(), summary.Token, summary.AgentCount, summary.OracleTruth, summary.MerkleRoot)
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("telegram api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	t.logger.Debug().Uint64("epoch", summary.Epoch).Msg("epoch summary delivered")
	return nil
}

var _ Notifier = (*TelegramNotifier)(nil)
