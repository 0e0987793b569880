package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ExchangeRate looks up the Bank of Russia daily rate for a currency via
// the cbr-xml-daily.ru JSON mirror.
type ExchangeRate struct {
	apiBase    string
	httpClient *http.Client
}

func NewExchangeRate(apiBase string, timeout time.Duration) *ExchangeRate {
	return &ExchangeRate{
		apiBase:    strings.TrimRight(apiBase, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (t *ExchangeRate) Name() string { return "get_exchange_rate" }

func (t *ExchangeRate) Spec() Spec {
	return Spec{
		Name: t.Name(),
		Description: "Возвращает официальный курс валюты к рублю по данным ЦБ РФ " +
			"на текущую дату.",
		Parameters: []Param{
			{Name: "currency", Type: "string", Description: "Код валюты ISO 4217, например USD, EUR, CNY", Required: true},
		},
	}
}

type cbrQuote struct {
	Nominal float64 `json:"Nominal"`
	Name    string  `json:"Name"`
	Value   float64 `json:"Value"`
}

type cbrDaily struct {
	Date   string              `json:"Date"`
	Valute map[string]cbrQuote `json:"Valute"`
}

func (t *ExchangeRate) Execute(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	code := strings.ToUpper(strings.TrimSpace(args.Currency))
	if code == "" {
		return "", fmt.Errorf("не указан код валюты")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.apiBase+"/daily_json.js", nil)
	if err != nil {
		return "", err
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("запрос курсов ЦБ РФ не удался: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) // drain
		return "", fmt.Errorf("запрос курсов ЦБ РФ вернул статус %d", resp.StatusCode)
	}

	var daily cbrDaily
	if err := json.NewDecoder(resp.Body).Decode(&daily); err != nil {
		return "", fmt.Errorf("не удалось разобрать ответ ЦБ РФ: %w", err)
	}
	quote, ok := daily.Valute[code]
	if !ok {
		return "", fmt.Errorf("валюта %s не найдена в курсах ЦБ РФ", code)
	}
	if quote.Nominal <= 0 {
		return "", fmt.Errorf("некорректный номинал для валюты %s", code)
	}

	out, err := json.Marshal(map[string]any{
		"currency": code,
		"name":     quote.Name,
		"rate":     round2(quote.Value / quote.Nominal),
		"date":     daily.Date,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
