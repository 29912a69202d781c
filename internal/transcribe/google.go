// internal/transcribe/google.go
package transcribe

import (
	"context"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"hskk-assessor/internal/common/config"
	apperrors "hskk-assessor/internal/common/errors"
)

// GoogleBackend transcribes through Cloud Speech-to-Text. It is the only
// backend that reports word time offsets, which word level analysis relies
// on.
type GoogleBackend struct {
	cfg    config.GoogleConfig
	client *speech.Client
}

func NewGoogleBackend(ctx context.Context, cfg config.GoogleConfig) (*GoogleBackend, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GoogleBackend{cfg: cfg, client: client}, nil
}

func (g *GoogleBackend) ID() string { return "google" }

func (g *GoogleBackend) Close() error { return g.client.Close() }

func (g *GoogleBackend) Transcribe(ctx context.Context, audio []byte, filename string) (Transcript, error) {
	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encodingFor(filename),
			SampleRateHertz:            int32(g.cfg.SampleRateHertz),
			LanguageCode:               g.cfg.LanguageCode,
			EnableAutomaticPunctuation: true,
			EnableWordTimeOffsets:      true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}

	resp, err := g.client.Recognize(ctx, req)
	if err != nil {
		return Transcript{}, apperrors.NewTranscriptionBackendError(g.ID(), err)
	}

	var sb strings.Builder
	var words []Word
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alt := result.Alternatives[0]
		sb.WriteString(alt.Transcript)
		for _, w := range alt.Words {
			words = append(words, Word{
				Text:  w.Word,
				Start: w.StartTime.AsDuration().Seconds(),
				End:   w.EndTime.AsDuration().Seconds(),
			})
		}
	}

	return Transcript{Text: strings.TrimSpace(sb.String()), Words: words}, nil
}

func encodingFor(filename string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}
