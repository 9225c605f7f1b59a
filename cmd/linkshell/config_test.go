package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-packetlink/checksum"
	"github.com/arloliu/go-packetlink/link"
)

const sampleConfig = `
address = "10.0.0.5:4059"
dial_timeout = "500ms"
log_level = "DEBUG"

[client]
name = "plc"
wait_time = "250ms"
resend_limit = 3

[frame]
begin = "02"
end = "0D 0A"
checksum = "crc16"
byte_order = "big"
minimum_size = 4
`

func TestDecodeShellConfig(t *testing.T) {
	require := require.New(t)

	cfg, err := decodeShellConfig(sampleConfig)
	require.NoError(err)
	require.Equal("10.0.0.5:4059", cfg.Address)
	require.Equal(500*time.Millisecond, cfg.DialTimeout)
	require.Equal("debug", cfg.LogLevel)

	c, err := link.NewClient(cfg.Options...)
	require.NoError(err)
	require.Equal("plc", c.Name())

	f := c.Format()
	require.Equal(link.Uint8Marker(0x02), f.Begin)
	require.Equal(link.BytesMarker([]byte{0x0D, 0x0A}), f.End)
	require.Equal(checksum.CRC16, f.Checksum.Kind)
	require.Equal(link.BigEndian, f.ByteOrder)
	require.Equal(4, f.MinimumSize)

	p := c.CreatePacket()
	require.Equal(250*time.Millisecond, p.WaitTime())
	require.Equal(3, p.ResendLimit())
}

func TestDecodeShellConfig_Defaults(t *testing.T) {
	cfg, err := decodeShellConfig("")
	require.NoError(t, err)
	require.Equal(t, defaultShellConfig().Address, cfg.Address)
	require.Empty(t, cfg.Options)
}

func TestDecodeShellConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad dial timeout", `dial_timeout = "soon"`},
		{"bad wait time", "[client]\nwait_time = \"x\""},
		{"bad marker", "[frame]\nbegin = \"zz\""},
		{"unknown checksum", "[frame]\nchecksum = \"crc99\""},
		{"unknown byte order", "[frame]\nbyte_order = \"middle\""},
		{"invalid toml", "address = "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeShellConfig(tt.data)
			require.Error(t, err)
		})
	}
}

func TestLoadShellConfig_File(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "linkshell.toml")
	require.NoError(os.WriteFile(path, []byte("[client]\nwait_time = \"infinite\"\n"), 0o600))

	cfg, err := loadShellConfig(path)
	require.NoError(err)

	c, err := link.NewClient(cfg.Options...)
	require.NoError(err)
	require.Equal(link.WaitInfinite, c.CreatePacket().WaitTime())

	_, err = loadShellConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(err)
}

func TestParseHex(t *testing.T) {
	for _, in := range []string{"02 41 03", "024103", "0x02,0x41,0x03", "02:41:03"} {
		b, err := parseHex(in)
		require.NoError(t, err, in)
		require.Equal(t, []byte{0x02, 0x41, 0x03}, b, in)
	}
}
