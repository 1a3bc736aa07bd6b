package motivation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default phrase set, seeded on every start. Seeding is idempotent:
// pairs already present are left alone.
var defaultPhrases = []Message{
	{Kind: KindPraise, Text: "Excellent! You completed absolutely every task!"},
	{Kind: KindPraise, Text: "Excellent! You completed everything planned for today!"},
	{Kind: KindPraise, Text: "Congratulations on a new record!"},
	{Kind: KindPraise, Text: "Well done, keep it up!"},
	{Kind: KindNudge, Text: "Let's try to close one more task!"},
	{Kind: KindNudge, Text: "Let's check whether your delegated tasks are done!"},
	{Kind: KindNudge, Text: "You've almost closed today's tasks, just a little left!"},
	{Kind: KindNudge, Text: "Great! Just a bit more to go."},
}

type phraseFile struct {
	Phrases []struct {
		Kind Kind   `yaml:"kind"`
		Text string `yaml:"text"`
	} `yaml:"phrases"`
}

// Seed inserts the built-in phrases plus, when phrasesPath is
// non-empty, every pair from the YAML file at that path.
func Seed(ctx context.Context, repo Repository, phrasesPath string) error {
	phrases := make([]Message, len(defaultPhrases))
	copy(phrases, defaultPhrases)

	if phrasesPath != "" {
		extra, err := loadPhraseFile(phrasesPath)
		if err != nil {
			return err
		}
		phrases = append(phrases, extra...)
	}

	for i := range phrases {
		m := phrases[i]
		if err := repo.Ensure(ctx, &m); err != nil {
			return err
		}
	}
	return nil
}

func loadPhraseFile(path string) ([]Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read phrase file: %w", err)
	}
	var f phraseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse phrase file: %w", err)
	}
	msgs := make([]Message, 0, len(f.Phrases))
	for _, p := range f.Phrases {
		if p.Kind != KindPraise && p.Kind != KindNudge {
			return nil, fmt.Errorf("unknown phrase kind %q in %s", p.Kind, path)
		}
		if p.Text == "" {
			continue
		}
		msgs = append(msgs, Message{Kind: p.Kind, Text: p.Text})
	}
	return msgs, nil
}
