package i18n

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type Translations struct {
	bundle   *i18n.Bundle
	localize *i18n.Localizer
}

func NewTranslations(defaultLang string) (*Translations, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	bundle.MustParseMessageFileBytes([]byte(defaultMessages), "default.en.toml")

	files, err := filepath.Glob("locales/active.*.toml")
	if err != nil {
		return nil, fmt.Errorf("error reading locales: %w", err)
	}

	for _, file := range files {
		if _, err := bundle.LoadMessageFile(file); err != nil {
			return nil, fmt.Errorf("error loading locale file %s: %w", file, err)
		}
	}

	localize := i18n.NewLocalizer(bundle, defaultLang)

	return &Translations{
		bundle:   bundle,
		localize: localize,
	}, nil
}

func (t *Translations) SetLanguage(lang string) error {
	for _, tag := range t.bundle.LanguageTags() {
		if tag.String() == lang {
			t.localize = i18n.NewLocalizer(t.bundle, lang)
			return nil
		}
	}
	return fmt.Errorf("language '%s' not supported", lang)
}

func (t *Translations) GetMessage(messageID string, count int, templateData map[string]interface{}) string {
	localized, err := t.localize.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID: messageID,
		},
		PluralCount:  count,
		TemplateData: templateData,
	})
	if err != nil {
		return "Translation missing: " + messageID
	}
	return localized
}

var defaultMessages = `
	[submit_command_description]
	other = "Push the current branch and create or update its pull request"

	[checkout_command_description]
	other = "Fetch and check out the branch behind a pull request"

	[clean_command_description]
	other = "Remove the worktree holding a branch"

	[submit_starting]
	other = "Submitting branch {{.Branch}}..."

	[submit_pr_created]
	other = "Created PR #{{.PRNumber}}: {{.URL}}"

	[submit_pr_updated]
	other = "Updated PR #{{.PRNumber}}: {{.URL}}"

	[submit_stack_url]
	other = "Graphite: {{.URL}}"

	[submit_failed]
	other = "Submission failed in {{.Phase}} ({{.Kind}}): {{.Message}}"

	[error_no_branch]
	other = "You are not on a branch. Check out a branch and try again."

	[error_branch_diverged]
	other = "Branch is ahead {{.Ahead}} and behind {{.Behind}} of its remote. Rebase manually or re-run with --force."

	[error_no_commits]
	other = "No commits ahead of {{.Parent}}. Nothing to submit."

	[error_parent_branch_no_pr]
	other = "Parent branch {{.Parent}} has no pull request. Submit the stack instead of a single branch."

	[error_github_auth]
	other = "GitHub authentication failed. Configure a token with: erk config init"

	[config_command_description]
	other = "Manage erk configuration"

	[config_initialized]
	other = "Configuration written to {{.Path}}"

	[config_current]
	other = "Current configuration"

	[help_command_usage]
	other = "Show help for erk commands"
`
