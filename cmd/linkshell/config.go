package main

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/arloliu/go-packetlink/checksum"
	"github.com/arloliu/go-packetlink/link"
)

type fileConfig struct {
	Address     string `toml:"address"`
	DialTimeout string `toml:"dial_timeout"`
	LogLevel    string `toml:"log_level"`

	Client clientSection `toml:"client"`
	Frame  frameSection  `toml:"frame"`
}

type clientSection struct {
	Name        string `toml:"name"`
	WaitTime    string `toml:"wait_time"`
	ResendLimit int    `toml:"resend_limit"`
}

type frameSection struct {
	Begin       string `toml:"begin"`
	End         string `toml:"end"`
	Checksum    string `toml:"checksum"`
	ByteOrder   string `toml:"byte_order"`
	MinimumSize int    `toml:"minimum_size"`
}

// shellConfig is the resolved linkshell configuration.
type shellConfig struct {
	Address     string
	DialTimeout time.Duration
	LogLevel    string
	Options     []link.ClientOption
}

func defaultShellConfig() shellConfig {
	return shellConfig{
		Address:     "127.0.0.1:5000",
		DialTimeout: 3 * time.Second,
		LogLevel:    "info",
	}
}

func loadShellConfig(path string) (shellConfig, error) {
	cfg := defaultShellConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return shellConfig{}, fmt.Errorf("load linkshell config: %w", err)
	}

	return applyFileConfig(cfg, raw, meta)
}

func decodeShellConfig(data string) (shellConfig, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return shellConfig{}, fmt.Errorf("decode linkshell config: %w", err)
	}

	return applyFileConfig(defaultShellConfig(), raw, meta)
}

func applyFileConfig(cfg shellConfig, raw fileConfig, meta toml.MetaData) (shellConfig, error) {
	if meta.IsDefined("address") {
		cfg.Address = strings.TrimSpace(raw.Address)
	}

	if meta.IsDefined("dial_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DialTimeout))
		if err != nil {
			return shellConfig{}, fmt.Errorf("parse dial_timeout: %w", err)
		}
		cfg.DialTimeout = d
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}

	if meta.IsDefined("client", "name") {
		cfg.Options = append(cfg.Options, link.WithName(strings.TrimSpace(raw.Client.Name)))
	}

	if meta.IsDefined("client", "wait_time") {
		wait := strings.TrimSpace(raw.Client.WaitTime)
		if wait == "infinite" {
			cfg.Options = append(cfg.Options, link.WithWaitTime(link.WaitInfinite))
		} else {
			d, err := time.ParseDuration(wait)
			if err != nil {
				return shellConfig{}, fmt.Errorf("parse client.wait_time: %w", err)
			}
			cfg.Options = append(cfg.Options, link.WithWaitTime(d))
		}
	}

	if meta.IsDefined("client", "resend_limit") {
		cfg.Options = append(cfg.Options, link.WithResendLimit(raw.Client.ResendLimit))
	}

	if meta.IsDefined("frame", "begin") {
		m, err := parseMarker(raw.Frame.Begin)
		if err != nil {
			return shellConfig{}, fmt.Errorf("parse frame.begin: %w", err)
		}
		cfg.Options = append(cfg.Options, link.WithBeginMarker(m))
	}

	if meta.IsDefined("frame", "end") {
		m, err := parseMarker(raw.Frame.End)
		if err != nil {
			return shellConfig{}, fmt.Errorf("parse frame.end: %w", err)
		}
		cfg.Options = append(cfg.Options, link.WithEndMarker(m))
	}

	if meta.IsDefined("frame", "checksum") {
		kind, err := checksum.ParseKind(strings.TrimSpace(raw.Frame.Checksum))
		if err != nil {
			return shellConfig{}, fmt.Errorf("parse frame.checksum: %w", err)
		}
		cfg.Options = append(cfg.Options, link.WithChecksumKind(kind))
	}

	if meta.IsDefined("frame", "byte_order") {
		order, err := parseByteOrder(raw.Frame.ByteOrder)
		if err != nil {
			return shellConfig{}, err
		}
		cfg.Options = append(cfg.Options, link.WithByteOrder(order))
	}

	if meta.IsDefined("frame", "minimum_size") {
		cfg.Options = append(cfg.Options, link.WithMinimumSize(raw.Frame.MinimumSize))
	}

	return cfg, nil
}

// parseMarker decodes a hex marker. One byte becomes an 8-bit marker, longer values a byte string.
func parseMarker(s string) (link.Marker, error) {
	b, err := parseHex(s)
	if err != nil {
		return link.Marker{}, err
	}

	switch len(b) {
	case 0:
		return link.Marker{}, nil
	case 1:
		return link.Uint8Marker(b[0]), nil
	default:
		return link.BytesMarker(b), nil
	}
}

func parseByteOrder(s string) (link.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "big", "big_endian", "bigendian":
		return link.BigEndian, nil
	case "little", "little_endian", "littleendian":
		return link.LittleEndian, nil
	case "native":
		return link.NativeByteOrder(), nil
	default:
		return 0, fmt.Errorf("unknown frame.byte_order %q", s)
	}
}

// parseHex accepts "02 41 03", "024103" and "0x02,0x41" forms.
func parseHex(s string) ([]byte, error) {
	r := strings.NewReplacer("0x", "", "0X", "", " ", "", ",", "", ":", "")
	clean := r.Replace(strings.TrimSpace(s))

	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}

	return b, nil
}
