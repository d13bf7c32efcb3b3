package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "bare root command", args: []string{"--port", "8080"}, want: "events-api"},
		{name: "serve subcommand", args: []string{"serve", "--port", "8080"}, want: "serve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() { serverPort = 0 })

			cmd, flags, err := rootCmd.Find(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Name())

			require.NoError(t, cmd.ParseFlags(flags))
			assert.Equal(t, 8080, serverPort)
		})
	}
}

func TestPortFlag_NotOnSeedAdmin(t *testing.T) {
	assert.Nil(t, seedAdminCmd.Flags().Lookup("port"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}
