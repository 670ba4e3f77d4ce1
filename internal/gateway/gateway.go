// Package gateway is the typed call surface to the language/vision model.
// Every operation is one request and one response: no retries, no streaming.
// Retry policy, if any, belongs to the caller; in this design a single
// failure aborts the enclosing pipeline step.
package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"sosconnect-go/internal/types"
)

// Config selects the OpenAI-compatible endpoint and models.
type Config struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	ImageModel string
}

// Client implements the inference operations over go-openai.
type Client struct {
	ai         *openai.Client
	chatModel  string
	imageModel string
}

func New(cfg Config) *Client {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = openai.CreateImageModelDallE3
	}
	return &Client{
		ai:         openai.NewClientWithConfig(cc),
		chatModel:  chatModel,
		imageModel: imageModel,
	}
}

// TranscribeAndTranslate transcribes the clip and translates the transcript
// into targetLanguage in a single call. The source language can be anything.
func (c *Client) TranscribeAndTranslate(ctx context.Context, media types.MediaAsset, targetLanguage string) (string, error) {
	prompt := fmt.Sprintf(
		"Transcribe the following audio/video and translate the transcription into %s. The original language can be anything. Return only the translated transcription.",
		targetLanguage,
	)
	parts := []openai.ChatMessagePart{textPart(prompt), mediaPart(media)}
	return c.complete(ctx, "transcribe_translate", parts, false)
}

// ExtractStructured asks for output conforming to the given JSON schema.
// media may be nil for text-only extraction.
func (c *Client) ExtractStructured(ctx context.Context, media *types.MediaAsset, schema, contextPrompt string) (string, error) {
	prompt := contextPrompt +
		"\nThe output must be a single JSON value conforming to this schema. Do not include any markdown formatting.\n" + schema
	parts := []openai.ChatMessagePart{textPart(prompt)}
	if media != nil {
		parts = append(parts, mediaPart(*media))
	}
	return c.complete(ctx, "extract_structured", parts, true)
}

// DetectLanguage names the primary spoken language of the clip.
func (c *Client) DetectLanguage(ctx context.Context, media types.MediaAsset) (string, error) {
	prompt := `Detect the primary language spoken in the provided audio/video. Return only the name of the language (e.g., "Spanish", "French", "German"). If no language is detected, default to "English".`
	parts := []openai.ChatMessagePart{textPart(prompt), mediaPart(media)}
	out, err := c.complete(ctx, "detect_language", parts, false)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(out), `"`), nil
}

// GenerateText runs a plain text-in, text-out completion.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, "generate_text", []openai.ChatMessagePart{textPart(prompt)}, false)
}

// GenerateImage renders one instructional image and returns it as a data
// URI, or empty when the service produced nothing for the prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.ai.CreateImage(ctx, openai.ImageRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return "", &types.InferenceError{Op: "generate_image", Msg: err.Error()}
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", nil
	}
	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}

func (c *Client) complete(ctx context.Context, op string, parts []openai.ChatMessagePart, jsonOut bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		Temperature: 0,
	}
	if jsonOut {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.ai.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &types.InferenceError{Op: op, Msg: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return "", &types.InferenceError{Op: op, Msg: "empty response from model"}
	}
	return resp.Choices[0].Message.Content, nil
}

func textPart(text string) openai.ChatMessagePart {
	return openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: text}
}

// mediaPart inlines the clip. Audio rides the input_audio content type;
// video is inlined as a data URI the same way the original client sent
// inlineData parts.
func mediaPart(media types.MediaAsset) openai.ChatMessagePart {
	encoded := base64.StdEncoding.EncodeToString(media.Data)
	if media.Kind == types.MediaAudio {
		return openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeInputAudio,
			InputAudio: &openai.ChatMessageInputAudio{
				Data:   encoded,
				Format: audioFormat(media.Mime),
			},
		}
	}
	return openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL: fmt.Sprintf("data:%s;base64,%s", media.Mime, encoded),
		},
	}
}

func audioFormat(mime string) string {
	switch {
	case strings.Contains(mime, "wav"):
		return "wav"
	default:
		return "mp3"
	}
}
