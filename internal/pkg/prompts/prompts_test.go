//go:build unit

package prompts_test

import (
	"os"
	"path/filepath"
	"testing"

	"coupon-sync/internal/pkg/prompts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsRenderBrandName(t *testing.T) {
	tpl := prompts.Defaults()

	assert.Contains(t, tpl.RenderDescription("Nike"), "Nike")
	assert.Contains(t, tpl.RenderWhyWeLove("Nike"), "Nike")
	assert.Contains(t, tpl.RenderHashtags("Nike"), "Nike")
	assert.NotContains(t, tpl.RenderDescription("Nike"), "{brand}")
}

func TestLoadOverridesOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: Describe {brand} briefly.\n"), 0o600))

	tpl, err := prompts.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Describe Nike briefly.", tpl.RenderDescription("Nike"))
	assert.Equal(t, prompts.Defaults().WhyWeLove, tpl.WhyWeLove, "unset fields keep their defaults")
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	tpl, err := prompts.Load("")
	require.NoError(t, err)
	assert.Equal(t, prompts.Defaults(), tpl)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := prompts.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
