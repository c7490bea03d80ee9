package catalog

import (
	"strings"
	"testing"

	"github.com/alevsk/meshgen/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testValues = Values{
	RepoURL:                "https://example.com/org/repo.git",
	ObservabilityNamespace: "central-observability",
}

func TestNew_Profiles(t *testing.T) {
	tests := []struct {
		name    string
		profile config.Profile
		want    []string
		wantErr bool
	}{
		{
			name:    "tracing",
			profile: config.ProfileTracing,
			want: []string{
				"infra/ossm/base/namespace.yaml",
				"infra/observability/base/namespace.yaml",
				"apps/bookinfo/base/namespace.yaml",
				"infra/ossm/base/istio.yaml",
				"infra/ossm/base/telemetry.yaml",
				"infra/observability/base/minio.yaml",
				"infra/observability/base/tempo.yaml",
				"infra/observability/base/kiali-config.yaml",
				"apps/bookinfo/base/bookinfo-deployment.yaml",
				"apps/bookinfo/gateway/gateway.yaml",
				"apps/bookinfo/gateway/httproute.yaml",
				"apps/bookinfo/gateway/openshift-route.yaml",
				"infra/ossm/base/kustomization.yaml",
				"infra/observability/base/kustomization.yaml",
				"apps/bookinfo/base/kustomization.yaml",
				"apps/bookinfo/gateway/kustomization.yaml",
				"bootstrap/app-of-apps.yaml",
			},
		},
		{
			name:    "central adds the grafana datasource",
			profile: config.ProfileCentral,
			want: []string{
				"infra/ossm/base/namespace.yaml",
				"infra/observability/base/namespace.yaml",
				"apps/bookinfo/base/namespace.yaml",
				"infra/ossm/base/istio.yaml",
				"infra/ossm/base/telemetry.yaml",
				"infra/observability/base/minio.yaml",
				"infra/observability/base/tempo.yaml",
				"infra/observability/base/grafana-datasource.yaml",
				"infra/observability/base/kiali-config.yaml",
				"apps/bookinfo/base/bookinfo-deployment.yaml",
				"apps/bookinfo/gateway/gateway.yaml",
				"apps/bookinfo/gateway/httproute.yaml",
				"apps/bookinfo/gateway/openshift-route.yaml",
				"infra/ossm/base/kustomization.yaml",
				"infra/observability/base/kustomization.yaml",
				"apps/bookinfo/base/kustomization.yaml",
				"apps/bookinfo/gateway/kustomization.yaml",
				"bootstrap/app-of-apps.yaml",
			},
		},
		{
			name:    "unknown profile",
			profile: "staging",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.profile)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Paths())
			assert.Equal(t, tt.profile, c.Profile())
		})
	}
}

func TestCatalog_Dirs(t *testing.T) {
	c, err := New(config.ProfileCentral)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"infra/ossm/base",
		"infra/observability/base",
		"apps/bookinfo/base",
		"apps/bookinfo/gateway",
		"bootstrap",
	}, c.Dirs())
}

func TestCatalog_Remote(t *testing.T) {
	c, err := New(config.ProfileTracing)
	require.NoError(t, err)

	remote := c.Remote()
	assert.Equal(t, RemotePath, remote.Path)
	assert.True(t, remote.Remote)
	assert.Empty(t, remote.Placeholders)
}

func TestRender_Substitution(t *testing.T) {
	c, err := New(config.ProfileCentral)
	require.NoError(t, err)

	files, err := c.Render(testValues)
	require.NoError(t, err)
	require.Len(t, files, len(c.Paths())-1, "every entry but the remote one is rendered")

	byPath := make(map[string]string)
	for _, f := range files {
		assert.NotContains(t, string(f.Content), "{{", "unrendered action in %s", f.Path)
		byPath[f.Path] = string(f.Content)
	}

	bootstrap := byPath["bootstrap/app-of-apps.yaml"]
	assert.Equal(t, 5, strings.Count(bootstrap, "repoURL: 'https://example.com/org/repo.git'"))
	assert.Equal(t, 5, strings.Count(bootstrap, "repoURL:"))

	assert.Contains(t, byPath["infra/ossm/base/istio.yaml"],
		"service: tempo-distributor.central-observability.svc.cluster.local")

	for p, body := range byPath {
		if strings.HasPrefix(p, "infra/observability/base/") && !strings.HasSuffix(p, "kustomization.yaml") {
			assert.Contains(t, body, "central-observability", "%s must reference the namespace", p)
		}
	}
}

func TestRender_NamespaceFanOut(t *testing.T) {
	c, err := New(config.ProfileTracing)
	require.NoError(t, err)

	files, err := c.Render(Values{RepoURL: "R", ObservabilityNamespace: "N"})
	require.NoError(t, err)

	for _, f := range files {
		body := string(f.Content)
		switch f.Path {
		case "infra/ossm/base/istio.yaml":
			assert.Contains(t, body, "tempo-distributor.N.svc.cluster.local")
		case "infra/observability/base/namespace.yaml":
			assert.Contains(t, body, "name: N\n")
		case "bootstrap/app-of-apps.yaml":
			assert.Equal(t, 5, strings.Count(body, "repoURL: 'R'"))
			assert.Contains(t, body, "namespace: N\n")
		}
		assert.NotContains(t, body, "tracing-system", "%s must not hardcode a namespace", f.Path)
		assert.NotContains(t, body, "central-observability", "%s must not hardcode a namespace", f.Path)
	}
}

func TestRender_Deterministic(t *testing.T) {
	c, err := New(config.ProfileCentral)
	require.NoError(t, err)

	first, err := c.Render(testValues)
	require.NoError(t, err)
	second, err := c.Render(testValues)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderPath(t *testing.T) {
	c, err := New(config.ProfileTracing)
	require.NoError(t, err)

	f, err := c.RenderPath("infra/observability/base/kustomization.yaml", testValues)
	require.NoError(t, err)
	assert.Equal(t, SectionKustomize, f.Section)
	assert.NotContains(t, string(f.Content), "grafana-datasource.yaml")

	_, err = c.RenderPath("infra/observability/base/grafana-datasource.yaml", testValues)
	assert.ErrorIs(t, err, ErrUnknownPath, "tracing profile does not carry the datasource")

	_, err = c.RenderPath(RemotePath, testValues)
	assert.ErrorIs(t, err, ErrUnknownPath)

	central, err := New(config.ProfileCentral)
	require.NoError(t, err)
	f, err = central.RenderPath("infra/observability/base/kustomization.yaml", testValues)
	require.NoError(t, err)
	assert.Contains(t, string(f.Content), "- grafana-datasource.yaml")
}

func TestPlaceholders_SubsetOfValues(t *testing.T) {
	allowed := []string{"RepoURL", "ObservabilityNamespace"}

	for _, profile := range []config.Profile{config.ProfileTracing, config.ProfileCentral} {
		c, err := New(profile)
		require.NoError(t, err)
		for _, e := range c.Entries() {
			for _, p := range e.Placeholders {
				assert.Contains(t, allowed, p, "%s references unknown field %s", e.Path, p)
			}
		}
	}

	c, err := New(config.ProfileCentral)
	require.NoError(t, err)
	for _, e := range c.Entries() {
		switch e.Path {
		case "bootstrap/app-of-apps.yaml":
			assert.Equal(t, []string{"RepoURL", "ObservabilityNamespace"}, e.Placeholders)
		case "infra/ossm/base/istio.yaml":
			assert.Equal(t, []string{"ObservabilityNamespace"}, e.Placeholders)
		case "apps/bookinfo/gateway/gateway.yaml":
			assert.Empty(t, e.Placeholders)
		}
	}
}

func TestValuesFrom(t *testing.T) {
	cfg := config.Default()
	cfg.RepoURL = "git@example.com:org/repo.git"

	v := ValuesFrom(cfg)
	assert.Equal(t, "git@example.com:org/repo.git", v.RepoURL)
	assert.Equal(t, "central-observability", v.ObservabilityNamespace)
}
