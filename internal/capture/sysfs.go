package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/smazurov/capturehost/internal/mediadevices"
)

// SysfsEnumerator lists V4L2 and ALSA capture devices from sysfs, procfs and
// /dev without opening the devices. Root prefixes every path, so tests can
// point it at a fixture tree; it is "/" in production.
type SysfsEnumerator struct {
	Root string
}

// NewSysfsEnumerator creates an enumerator rooted at the real filesystem.
func NewSysfsEnumerator() *SysfsEnumerator {
	return &SysfsEnumerator{Root: "/"}
}

// Enumerate implements Enumerator.
func (s *SysfsEnumerator) Enumerate(ctx context.Context) (mediadevices.Devices, mediadevices.Devices, error) {
	audio, err := s.audioDevices()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to enumerate ALSA devices: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	video, err := s.videoDevices()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to enumerate V4L2 devices: %w", err)
	}
	return audio, video, nil
}

func (s *SysfsEnumerator) path(elem ...string) string {
	root := s.Root
	if root == "" {
		root = "/"
	}
	return filepath.Join(append([]string{root}, elem...)...)
}

// videoDevices lists capture nodes under /sys/class/video4linux. Only index 0
// of each physical device is kept; higher indices are metadata nodes.
func (s *SysfsEnumerator) videoDevices() (mediadevices.Devices, error) {
	classDir := s.path("sys", "class", "video4linux")
	entries, err := os.ReadDir(classDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return mediadevices.Devices{}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "video") {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return nodeNumber(names[i]) < nodeNumber(names[j])
	})

	stableIDs := s.stableVideoIDs()

	devices := make(mediadevices.Devices, 0, len(names))
	for _, node := range names {
		nodeDir := filepath.Join(classDir, node)

		index := readInt(filepath.Join(nodeDir, "index"))
		if index != 0 {
			continue
		}

		group := ""
		if target, err := os.Readlink(filepath.Join(nodeDir, "device")); err == nil {
			group = filepath.Base(target)
		}

		id := stableIDs[node]
		if id == "" {
			source := group
			if source == "" {
				source = node
			}
			id = fmt.Sprintf("platform-%s-video-index%d", source, index)
		}

		name := readTrimmed(filepath.Join(nodeDir, "name"))
		if name == "" {
			name = node
		}

		devices = append(devices, mediadevices.Device{
			Type:    mediadevices.DeviceVideoCapture,
			ID:      id,
			Name:    name,
			GroupID: group,
			Path:    "/dev/" + node,
		})
	}
	return devices, nil
}

// stableVideoIDs maps node names (video0) to their /dev/v4l/by-id link name.
func (s *SysfsEnumerator) stableVideoIDs() map[string]string {
	ids := make(map[string]string)

	byID := s.path("dev", "v4l", "by-id")
	entries, err := os.ReadDir(byID)
	if err != nil {
		return ids
	}

	for _, e := range entries {
		if e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		target, err := os.Readlink(filepath.Join(byID, e.Name()))
		if err != nil {
			continue
		}
		node := filepath.Base(target)
		if _, taken := ids[node]; !taken {
			ids[node] = e.Name()
		}
	}
	return ids
}

// cardLine matches the first line of a card in /proc/asound/cards:
// " 0 [PCH            ]: HDA-Intel - HDA Intel PCH".
var cardLine = regexp.MustCompile(`^\s*(\d+)\s+\[(\S+)\s*\]:\s*(.*?)\s+-\s+(.*)$`)

type soundCard struct {
	id   string
	name string
}

// audioDevices lists capture PCMs from /proc/asound/pcm.
func (s *SysfsEnumerator) audioDevices() (mediadevices.Devices, error) {
	cards, err := s.soundCards()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.path("proc", "asound", "pcm"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return mediadevices.Devices{}, nil
		}
		return nil, err
	}
	defer f.Close()

	devices := mediadevices.Devices{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		dev, ok := parsePCMLine(scanner.Text(), cards)
		if ok {
			devices = append(devices, dev)
		}
	}
	return devices, scanner.Err()
}

func (s *SysfsEnumerator) soundCards() (map[int]soundCard, error) {
	cards := make(map[int]soundCard)

	f, err := os.Open(s.path("proc", "asound", "cards"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cards, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := cardLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		cards[num] = soundCard{id: m[2], name: strings.TrimSpace(m[4])}
	}
	return cards, scanner.Err()
}

// parsePCMLine parses "00-00: ALC892 Analog : ALC892 Analog : playback 1 : capture 1"
// and keeps the PCM only when it has a capture stream.
func parsePCMLine(line string, cards map[int]soundCard) (mediadevices.Device, bool) {
	fields := strings.Split(line, ":")
	if len(fields) < 3 {
		return mediadevices.Device{}, false
	}

	cardStr, devStr, ok := strings.Cut(strings.TrimSpace(fields[0]), "-")
	if !ok {
		return mediadevices.Device{}, false
	}
	cardNum, err1 := strconv.Atoi(cardStr)
	devNum, err2 := strconv.Atoi(devStr)
	if err1 != nil || err2 != nil {
		return mediadevices.Device{}, false
	}

	capture := false
	for _, f := range fields[3:] {
		if strings.HasPrefix(strings.TrimSpace(f), "capture") {
			capture = true
			break
		}
	}
	if !capture {
		return mediadevices.Device{}, false
	}

	pcmName := strings.TrimSpace(fields[2])
	card := cards[cardNum]
	name := pcmName
	if card.name != "" {
		name = card.name + ": " + pcmName
	}

	return mediadevices.Device{
		Type:    mediadevices.DeviceAudioCapture,
		ID:      fmt.Sprintf("hw:%d,%d", cardNum, devNum),
		Name:    name,
		GroupID: card.id,
		Path:    fmt.Sprintf("/dev/snd/pcmC%dD%dc", cardNum, devNum),
	}, true
}

// nodeNumber extracts N from "videoN" so video10 sorts after video2.
func nodeNumber(node string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(node, "video"))
	if err != nil {
		return -1
	}
	return n
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func readInt(path string) int {
	val, _ := strconv.Atoi(readTrimmed(path))
	return val
}
