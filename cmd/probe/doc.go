// Command probe provides a CLI utility for checking RTSP sources
// before handing them to the bridge.
//
// It supports the following operations:
//   - check: Probe a source and report its video stream parameters
//   - args: Print the decoder command lines the bridge would run
//
// Usage:
//
//	probe <command> <rtsp-url>
//
// Commands:
//
//	check  Run ffprobe against the source and print the codec,
//	       resolution, and frame rate of its first video stream.
//	       The probe uses the same TCP transport and binary overrides
//	       as the bridge, so a passing check means the bridge can pull
//	       the source. Exits non-zero when the source is unreachable
//	       or carries no video stream.
//
//	args   Print the exact ffprobe and FFmpeg invocations the bridge
//	       builds for the source, for copy-paste debugging.
//
// Environment:
//
//	FFMPEG_PATH       - FFmpeg binary (default: ffmpeg)
//	FFPROBE_PATH      - ffprobe binary (default: ffprobe)
//	FFMPEG_EXTRA_ARGS - Extra remux arguments, whitespace-separated
//
// Notes:
//
// A probe attempt times out after 15 seconds. Unreachable RTSP sources
// fail the TCP handshake slowly, so a hanging check usually means a
// wrong address or a filtered network path rather than a decoder
// problem.
package main
