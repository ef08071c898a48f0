package web

import (
	"fmt"
	"time"
)

// formatSize renders n bytes with one decimal place, e.g. "12.3 KB".
func formatSize(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMG"[exp])
}

// relativeAge renders how long ago t was, relative to now.
func relativeAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

var icons = map[string]string{
	"pdf":  "📄",
	"txt":  "📄",
	"doc":  "📝",
	"docx": "📝",
	"xls":  "📊",
	"xlsx": "📊",
	"ppt":  "📽️",
	"pptx": "📽️",
	"jpg":  "🖼️",
	"jpeg": "🖼️",
	"png":  "🖼️",
	"gif":  "🖼️",
	"bmp":  "🖼️",
	"webp": "🖼️",
	"mp4":  "🎥",
	"avi":  "🎥",
	"mkv":  "🎥",
	"mov":  "🎥",
	"webm": "🎥",
	"mp3":  "🎵",
	"wav":  "🎵",
	"flac": "🎵",
	"aac":  "🎵",
	"zip":  "📦",
	"rar":  "📦",
	"7z":   "📦",
	"tar":  "📦",
	"gz":   "📦",
	"exe":  "⚙️",
	"msi":  "⚙️",
}

// icon picks the glyph shown for a file kind.
func icon(kind string) string {
	if i, ok := icons[kind]; ok {
		return i
	}
	return "📄"
}
