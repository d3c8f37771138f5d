package config

const (
	defaultDataDir         = "~/.local/share/highlighter"
	defaultStripDir        = "~/.cache/highlighter/strips"
	defaultLogDir          = "~/.local/share/highlighter/logs"
	defaultFFprobeBinary   = "ffprobe"
	defaultFFmpegBinary    = "ffmpeg"
	defaultProbeTimeout    = 30
	defaultPreviewWidth    = 640
	defaultAudioSampleRate = 44100
	defaultAudioChannels   = 2
	defaultStripFrames     = 20
	defaultStripHeight     = 90
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			StripDir: defaultStripDir,
			LogDir:   defaultLogDir,
		},
		Probe: Probe{
			FFprobeBinary:  defaultFFprobeBinary,
			TimeoutSeconds: defaultProbeTimeout,
		},
		Decode: Decode{
			FFmpegBinary:    defaultFFmpegBinary,
			PreviewWidth:    defaultPreviewWidth,
			AudioSampleRate: defaultAudioSampleRate,
			AudioChannels:   defaultAudioChannels,
		},
		Strip: Strip{
			Frames:      defaultStripFrames,
			ThumbHeight: defaultStripHeight,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
