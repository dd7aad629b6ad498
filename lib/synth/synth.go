// Package synth wraps the Google Cloud Text-To-Speech API behind the two
// calls the uploader needs: voice discovery per language and one-shot mp3
// synthesis.
package synth

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

type Voice struct {
	LanguageCode string
	Name         string
	Gender       texttospeechpb.SsmlVoiceGender
}

func (v Voice) String() string {
	return fmt.Sprintf("%s (%s)", v.Name, v.Gender)
}

type Client struct {
	tts *texttospeech.Client
}

// NewClient picks up credentials from GOOGLE_APPLICATION_CREDENTIALS the
// way all google cloud clients do.
func NewClient(ctx context.Context) (*Client, error) {
	tts, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{tts: tts}, nil
}

func (c *Client) Close() error {
	return c.tts.Close()
}

// ListVoices lists the voices available for a bcp-47 language code. An
// unknown code is not an error, just an empty list.
func (c *Client) ListVoices(ctx context.Context, languageCode string) ([]Voice, error) {
	res, err := c.tts.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{
		LanguageCode: languageCode,
	})
	if err != nil {
		return nil, err
	}

	voices := make([]Voice, 0, len(res.Voices))
	for _, voice := range res.Voices {
		code := languageCode
		if len(voice.LanguageCodes) > 0 {
			code = voice.LanguageCodes[0]
		}
		voices = append(voices, Voice{
			LanguageCode: code,
			Name:         voice.Name,
			Gender:       voice.SsmlGender,
		})
	}
	return voices, nil
}

// Synthesize renders text as mp3 bytes. The slowed speaking rate matches
// what learners expect from flashcard audio.
func (c *Client) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	res, err := c.tts.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.Name,
			SsmlGender:   voice.Gender,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  0.75,
		},
	})
	if err != nil {
		return nil, err
	}
	return res.AudioContent, nil
}
