package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type HuggingFaceProvider struct {
	BaseURL string
	Token   string
	Model   string

	MaxNewTokens int
	Temperature  float64

	Client *http.Client
}

func NewHuggingFaceProvider(baseURL, token, model string, maxNewTokens int, temperature float64) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	if maxNewTokens <= 0 {
		maxNewTokens = 200
	}
	return &HuggingFaceProvider{
		BaseURL:      baseURL,
		Token:        token,
		Model:        model,
		MaxNewTokens: maxNewTokens,
		Temperature:  temperature,
		Client:       &http.Client{Timeout: 90 * time.Second},
	}
}

type hfParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature,omitempty"`
}

type hfGenerateReq struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGenerateResp struct {
	GeneratedText string `json:"generated_text"`
	Error         string `json:"error,omitempty"`
}

// decodeGeneratedText accepts the two envelope shapes the hosted API is
// known to answer with: a single object {generated_text} or an array
// [{generated_text}, ...], depending on the model family.
func decodeGeneratedText(body []byte) (string, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return "", errors.New("empty response body")
	}

	if trimmed[0] == '[' {
		var many []hfGenerateResp
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return "", err
		}
		if len(many) == 0 {
			return "", errors.New("empty response array")
		}
		if many[0].Error != "" {
			return "", errors.New(many[0].Error)
		}
		if many[0].GeneratedText == "" {
			return "", errors.New("response lacks generated_text")
		}
		return many[0].GeneratedText, nil
	}

	var one hfGenerateResp
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return "", err
	}
	if one.Error != "" {
		return "", errors.New(one.Error)
	}
	if one.GeneratedText == "" {
		return "", errors.New("response lacks generated_text")
	}
	return one.GeneratedText, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.Client == nil {
		return "", &Error{Msg: "http client is nil"}
	}
	if strings.TrimSpace(p.Token) == "" {
		return "", &Error{Msg: "api token is not configured"}
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		return "", &Error{Msg: "model is required"}
	}

	reqBody := hfGenerateReq{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens: p.MaxNewTokens,
			Temperature:  p.Temperature,
		},
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Msg: "marshal request", Err: err}
	}

	url := fmt.Sprintf("%s/models/%s", strings.TrimRight(p.BaseURL, "/"), model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", &Error{Msg: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.Token)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", &Error{Msg: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return "", &Error{Msg: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 512 {
			msg = msg[:512]
		}
		if msg == "" {
			msg = "endpoint returned an error"
		}
		return "", &Error{Status: resp.StatusCode, Msg: msg}
	}

	text, err := decodeGeneratedText(body)
	if err != nil {
		return "", &Error{Status: resp.StatusCode, Msg: err.Error(), Err: err}
	}
	return text, nil
}
