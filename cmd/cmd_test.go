package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firestige.xyz/meshlisten/internal/config"
	"firestige.xyz/meshlisten/internal/log"
	"firestige.xyz/meshlisten/internal/source"
)

// MockLineSource implements source.LineSource
type MockLineSource struct {
	mock.Mock
}

func (m *MockLineSource) Next(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockLineSource) Close() error {
	args := m.Called()
	return args.Error(0)
}

func defaultEncodeOptions() encodeOptions {
	return encodeOptions{
		From:    0x1234abcd,
		To:      0xffffffff,
		ID:      42,
		Flags:   0x63,
		Channel: 8,
		Port:    1,
		RSSI:    "-42.50",
		SNR:     "9.75",
	}
}

func encodeToFile(t *testing.T, name string, text string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, runEncode(&buf, defaultEncodeOptions(), text))

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("open: %w", source.ErrNoDevice)))
}

func TestRunEncode_Triplet(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, runEncode(&buf, defaultEncodeOptions(), "Hello"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "[SX1262] Data (hex): FF FF FF FF CD AB 34 12 2A 00 00 00 63 08 00 00 "))
	assert.Equal(t, "[SX1262] RSSI: -42.50", lines[1])
	assert.Equal(t, "[SX1262] SNR: 9.75", lines[2])
}

func TestDecodeStream_EncodedMessage(t *testing.T) {
	var encoded bytes.Buffer
	require.NoError(t, runEncode(&encoded, defaultEncodeOptions(), "Hello mesh"))

	var out bytes.Buffer
	err := decodeStream(context.Background(), source.NewLineReader(&encoded),
		config.OutputConfig{Format: config.FormatText}, &out, log.GetLogger())

	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "  RSSI: -42.50 dBm  SNR: 9.75 dB\n")
	assert.Contains(t, text, "  From: !1234abcd  To: broadcast  Hops: 0/3\n")
	assert.Contains(t, text, "  Port: TEXT_MESSAGE (1)  ID: 0x0000002a  Ch: 8\n")
	assert.Contains(t, text, "  Message: Hello mesh\n")
}

func TestListenOn_StoppedAfterEndOfStream(t *testing.T) {
	var encoded bytes.Buffer
	require.NoError(t, runEncode(&encoded, defaultEncodeOptions(), "Hello"))
	cfg := &config.Config{
		Serial: config.SerialConfig{Baud: 115200},
		Output: config.OutputConfig{Format: config.FormatText},
	}

	var out bytes.Buffer
	err := listenOn(context.Background(), source.NewLineReader(&encoded), "/dev/ttyACM0", cfg, &out)

	require.NoError(t, err)
	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Listening on /dev/ttyACM0 at 115200 baud…  Ctrl+C to stop.\n"))
	assert.Contains(t, text, "  Message: Hello\n")
	assert.True(t, strings.HasSuffix(text, "\n--- stopped ---\n"))
}

func TestListenOn_StoppedAfterReadError(t *testing.T) {
	src := new(MockLineSource)
	src.On("Next", mock.Anything).Return("", errors.New("device unplugged"))
	cfg := &config.Config{Output: config.OutputConfig{Format: config.FormatText}}

	var out bytes.Buffer
	err := listenOn(context.Background(), src, "/dev/ttyACM0", cfg, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
	assert.True(t, strings.HasSuffix(out.String(), "\n--- stopped ---\n"))
}

func TestRunReplay_Log(t *testing.T) {
	path := encodeToFile(t, "serial.log", "from a log")

	var out bytes.Buffer
	err := runReplay(context.Background(), path, config.OutputConfig{Format: config.FormatText}, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Message: from a log")
}

func TestRunReplay_PcapRecordedThenReplayed(t *testing.T) {
	logPath := encodeToFile(t, "serial.log", "recorded")
	pcapPath := filepath.Join(t.TempDir(), "session.pcap")

	var first bytes.Buffer
	require.NoError(t, runReplay(context.Background(), logPath,
		config.OutputConfig{Format: config.FormatText, PCAP: pcapPath}, &first))

	var second bytes.Buffer
	require.NoError(t, runReplay(context.Background(), pcapPath,
		config.OutputConfig{Format: config.FormatYAML}, &second))

	yamlOut := second.String()
	assert.Contains(t, yamlOut, "port_name: TEXT_MESSAGE")
	assert.Contains(t, yamlOut, "Message: recorded")
	assert.NotContains(t, yamlOut, "rssi:", "pcap records carry no signal report")
}

func TestRunReplay_RefusesToOverwriteInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.pcap")

	err := runReplay(context.Background(), path, config.OutputConfig{Format: config.FormatText, PCAP: path}, io.Discard)

	assert.Error(t, err)
}

func TestRunReplay_MissingFile(t *testing.T) {
	err := runReplay(context.Background(), filepath.Join(t.TempDir(), "nope.log"),
		config.OutputConfig{Format: config.FormatText}, io.Discard)

	assert.Error(t, err)
}

func TestRunMonitor(t *testing.T) {
	src := new(MockLineSource)
	src.On("Next", mock.Anything).Return("[TEMPEST-LoRa] boot", nil).Once()
	src.On("Next", mock.Anything).Return("[SX1262] RSSI: -1", nil).Once()
	src.On("Next", mock.Anything).Return("", io.EOF).Once()

	var buf bytes.Buffer
	err := runMonitor(context.Background(), src, &buf)

	assert.NoError(t, err)
	assert.Equal(t, "[TEMPEST-LoRa] boot\n[SX1262] RSSI: -1\n", buf.String())
	src.AssertExpectations(t)
}

func TestRunMonitor_ReadError(t *testing.T) {
	src := new(MockLineSource)
	src.On("Next", mock.Anything).Return("", errors.New("device unplugged"))

	err := runMonitor(context.Background(), src, io.Discard)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
}

func TestRunMonitor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := new(MockLineSource)
	src.On("Next", mock.Anything).Return("", context.Canceled)

	assert.NoError(t, runMonitor(ctx, src, io.Discard))
}

func TestRunValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshlisten.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
serial:
  device: /dev/ttyACM3
  baud: 9600
output:
  format: yaml
`), 0o644))

	var buf bytes.Buffer
	require.NoError(t, runValidate(path, &buf))

	assert.Equal(t, "VALID: device /dev/ttyACM3 @ 9600 baud, output yaml, pcap off, log level info\n", buf.String())
}

func TestRunValidate_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshlisten.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: json\n"), 0o644))

	err := runValidate(path, io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID")
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer

	banner(&buf, config.FormatText, "hello")
	banner(&buf, config.FormatYAML, "not on stdout")

	assert.Equal(t, "hello\n", buf.String())
}

func TestOpenSerial_NoDevice(t *testing.T) {
	_, err := openSerial(config.SerialConfig{Glob: filepath.Join(t.TempDir(), "ttyACM*")})

	assert.ErrorIs(t, err, source.ErrNoDevice)
	assert.Equal(t, 2, ExitCode(err))
}
