package dbio

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantScheme string
		wantDSN    string
		wantErr    bool
	}{
		{name: "jdbc sqlite", url: "jdbc:sqlite:/tmp/a.db", wantScheme: "sqlite", wantDSN: "/tmp/a.db"},
		{name: "upper case prefix", url: "JDBC:SQLite:a.db", wantScheme: "sqlite", wantDSN: "a.db"},
		{name: "sqlite memory", url: "jdbc:sqlite::memory:", wantScheme: "sqlite", wantDSN: ":memory:"},
		{name: "postgres", url: "jdbc:postgresql://h:5432/db?user=u", wantScheme: "postgresql", wantDSN: "//h:5432/db?user=u"},
		{name: "without jdbc", url: "postgres://h/db", wantScheme: "postgres", wantDSN: "//h/db"},
		{name: "no scheme", url: "just-a-path", wantErr: true},
		{name: "empty scheme", url: "jdbc::x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme, dsn, err := ParseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScheme, scheme)
			assert.Equal(t, tt.wantDSN, dsn)
		})
	}
}

func TestSchemes(t *testing.T) {
	schemes := Schemes()
	for _, want := range []string{"hive", "hive2", "postgres", "postgresql", "sqlite"} {
		assert.Contains(t, schemes, want)
	}
	assert.IsNonDecreasing(t, schemes)
}

func TestOpen_UnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "jdbc:oracle:thin:@h:1521:x")
	require.Error(t, err)

	var unknown *UnknownSchemeError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "oracle", unknown.Scheme)
	assert.Contains(t, unknown.Available, "sqlite")
	assert.Contains(t, err.Error(), "oracle")
}

func TestRegister_CustomOpener(t *testing.T) {
	boom := errors.New("not today")
	Register("test-scheme", func(context.Context, string, *slog.Logger) (Source, error) {
		return nil, boom
	})

	_, err := Open(context.Background(), "jdbc:test-scheme:whatever")
	assert.ErrorIs(t, err, boom)
}

func TestParseHiveDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want hiveConfig
	}{
		{
			name: "host only",
			dsn:  "//warehouse",
			want: hiveConfig{host: "warehouse", port: defaultHivePort, auth: "NONE", session: map[string]string{}},
		},
		{
			name: "full",
			dsn:  "//warehouse:10001/sales;hive.exec.dynamic.partition=true?auth=NOSASL&user=etl&password=s3cret",
			want: hiveConfig{
				host:     "warehouse",
				port:     10001,
				auth:     "NOSASL",
				database: "sales",
				username: "etl",
				password: "s3cret",
				session:  map[string]string{"hive.exec.dynamic.partition": "true"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHiveDSN(tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"warehouse:10000", "//h:port", "//h/db;novalue"} {
		_, err := parseHiveDSN(bad)
		assert.Error(t, err, bad)
	}
}
