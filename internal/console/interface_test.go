package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"locator-catalog/internal/catalog"
	"locator-catalog/internal/config"
	"locator-catalog/internal/entity"
	"locator-catalog/internal/htmlparse"
	"locator-catalog/internal/usecase"
)

const explorePage = `<html><body>
<div id="study" role="button" aria-expanded="false"><span class="sectionSummaryText">Study</span></div>
</body></html>`

type fakeBrowser struct {
	ready    bool
	url      string
	probed   []string
	html     string
	matching int
}

func (b *fakeBrowser) Launch(context.Context) error {
	b.ready = true

	return nil
}

func (b *fakeBrowser) Close(context.Context) error {
	b.ready = false

	return nil
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.url = url

	return nil
}

func (b *fakeBrowser) Content(context.Context) (string, error) {
	return b.html, nil
}

func (b *fakeBrowser) CurrentURL() string {
	return b.url
}

func (b *fakeBrowser) IsReady() bool {
	return b.ready
}

func (b *fakeBrowser) Probe(_ context.Context, selector string) (*entity.ProbeResult, error) {
	b.probed = append(b.probed, selector)

	return &entity.ProbeResult{
		Selector: selector,
		Exists:   b.matching > 0,
		Visible:  b.matching > 0,
		Count:    b.matching,
		Text:     "Study",
	}, nil
}

func newTestInterface(t *testing.T, browser *fakeBrowser, script string) (*Interface, *bytes.Buffer) {
	t.Helper()

	logger := zaptest.NewLogger(t)
	cfg := &config.Config{CatalogConfig: &config.CatalogConfig{Dir: t.TempDir(), MinScore: 80}}

	store, err := catalog.New(cfg.CatalogConfig.Dir, logger)
	require.NoError(t, err)

	svc := usecase.NewUsecase(usecase.Params{
		Logger: logger,
		Config: cfg,
		Store:  store,
		Parser: htmlparse.NewParser(logger),
	})

	i := NewInterface(Params{Config: cfg, Logger: logger, Usecase: svc, Browser: browser})

	out := &bytes.Buffer{}
	i.in = strings.NewReader(script)
	i.out = out

	return i, out
}

func TestInterface_Session(t *testing.T) {
	browser := &fakeBrowser{ready: true, html: explorePage, matching: 1}

	script := strings.Join([]string{
		`capture https://caninecommons.cancer.gov/#/explore`,
		`resolve "Study dropdown"`,
		`heal "Primary Site" text=Primary "button[aria-expanded]:has-text('Primary Site')" tree_climbing`,
		`resolve "Primary Site"`,
		`compare 1.0`,
		`probe "Study dropdown"`,
		`bogus`,
		`exit`,
		`resolve "never reached"`,
	}, "\n")

	i, out := newTestInterface(t, browser, script)
	require.NoError(t, i.Start())

	got := out.String()

	assert.Equal(t, "https://caninecommons.cancer.gov/#/explore", browser.url)
	assert.Contains(t, got, "Captured 1 elements into caninecommons.cancer.gov / explore (v1.0)")
	assert.Contains(t, got, "#study[role='button']\n")
	assert.Contains(t, got, `Healed "Primary Site"`)
	assert.Contains(t, got, "button[aria-expanded]:has-text('Primary Site')\n")
	assert.Contains(t, got, "No breaking changes, risk LOW")
	assert.Contains(t, got, "+ Primary Site")
	assert.Contains(t, got, "matches: 1  visible: true")
	assert.Contains(t, got, `unknown command "bogus"`)
	assert.NotContains(t, got, "never reached")
	assert.Equal(t, []string{"#study[role='button']"}, browser.probed)
}

func TestInterface_RequiresPageAndBrowser(t *testing.T) {
	browser := &fakeBrowser{}

	script := strings.Join([]string{
		`resolve "Study dropdown"`,
		`capture https://caninecommons.cancer.gov/#/explore`,
		`use caninecommons.cancer.gov explore`,
		`add "Go button" "#go" button`,
		`resolve "Go button" button`,
		`compare`,
	}, "\n")

	i, out := newTestInterface(t, browser, script)
	require.NoError(t, i.Start())

	got := out.String()

	assert.Contains(t, got, "no page selected")
	assert.Contains(t, got, "browser is not running")
	assert.Contains(t, got, "Using caninecommons.cancer.gov / explore")
	assert.Contains(t, got, `Added "Go button" (console-`)
	assert.Contains(t, got, "#go\n")
	assert.Contains(t, got, "No breaking changes")
	assert.Empty(t, browser.url)
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "resolve Study", want: []string{"resolve", "Study"}},
		{in: `resolve  "Samples tab"   tab`, want: []string{"resolve", "Samples tab", "tab"}},
		{in: `add Go [role="tab"]:has-text('Go')`, want: []string{"add", "Go", `[role="tab"]:has-text('Go')`}},
		{in: `add Go "button:has-text('Go now')"`, want: []string{"add", "Go", "button:has-text('Go now')"}},
		{in: `add Primary button:has-text('Primary Site')`, want: []string{"add", "Primary", "button:has-text('Primary Site')"}},
		{in: `add Study [aria-label="Study name"] dropdown`, want: []string{"add", "Study", `[aria-label="Study name"]`, "dropdown"}},
		{in: `resolve Owner's tab`, want: []string{"resolve", "Owner's", "tab"}},
		{in: `compare ""`, want: []string{"compare", ""}},
		{in: `resolve "open`, wantErr: true},
		{in: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := splitArgs(tt.in)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
