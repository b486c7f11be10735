package decoder

// Config controls how decoder subprocesses are launched. The zero
// value resolves ffmpeg and ffprobe through PATH.
type Config struct {
	// BinaryPath is the FFmpeg binary to launch. Empty means "ffmpeg".
	BinaryPath string
	// ProbePath is the ffprobe binary used by source probing. Empty
	// means "ffprobe".
	ProbePath string
	// ExtraArgs are inserted after the input arguments and before the
	// output specification, for camera-specific tweaks.
	ExtraArgs []string
}

func (c Config) binary() string {
	if c.BinaryPath == "" {
		return "ffmpeg"
	}
	return c.BinaryPath
}

func (c Config) probeBinary() string {
	if c.ProbePath == "" {
		return "ffprobe"
	}
	return c.ProbePath
}

// Command is one concrete subprocess invocation.
type Command struct {
	Binary string
	Args   []string
}

// RemuxCommand builds the FFmpeg invocation that pulls source over
// RTSP and writes a copy remux as fragmented MP4 to stdout. Video is
// copied without re-encoding; audio is dropped.
func RemuxCommand(cfg Config, source string) Command {
	args := []string{
		"-rtsp_transport", "tcp",
		"-i", source,
		"-c:v", "copy",
		"-an",
	}
	args = append(args, cfg.ExtraArgs...)
	args = append(args,
		"-movflags", "frag_keyframe+empty_moov+default_base_moof",
		"-f", "mp4",
		"-",
	)
	return Command{Binary: cfg.binary(), Args: args}
}

// ProbeCommand builds the ffprobe invocation that checks whether a
// source is reachable and reports its video stream parameters as JSON.
func ProbeCommand(cfg Config, source string) Command {
	return Command{
		Binary: cfg.probeBinary(),
		Args: []string{
			"-v", "error",
			"-rtsp_transport", "tcp",
			"-select_streams", "v:0",
			"-show_entries", "stream=codec_name,width,height,avg_frame_rate",
			"-of", "json",
			source,
		},
	}
}
