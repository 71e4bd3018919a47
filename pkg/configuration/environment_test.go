package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfiguration_Defaults(t *testing.T) {
	c := &Configuration{}
	require.NoError(t, c.load(nil))

	require.Equal(t, "development", c.GoAppEnvironment)
	require.Equal(t, 50, c.Gedcom.MaxUploadMB)
	require.Equal(t, 70, c.Gedcom.DuplicateThreshold)
	require.Contains(t, c.Database.Opts, "dbname=arbor")
	require.NotNil(t, c.Logger())
}

func TestConfiguration_EnvOverrides(t *testing.T) {
	t.Setenv("DB_NAME", "arbor_test")
	t.Setenv("GEDCOM_DUPLICATE_THRESHOLD", "85")

	c := &Configuration{}
	require.NoError(t, c.load(nil))

	require.Equal(t, "arbor_test", c.Database.Name)
	require.Equal(t, 85, c.Gedcom.DuplicateThreshold)
	require.Contains(t, c.Database.ConnectionString(), "dbname=arbor_test")
}
