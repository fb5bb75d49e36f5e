package extract

import (
	"net/url"
	"strings"
)

// downloadersByHost maps hostnames to their downloaders
var downloadersByHost = map[string]Downloader{}

// fallbackDownloader handles hosts with no dedicated downloader
var fallbackDownloader Downloader

// Register adds a downloader for the given hostnames
func Register(d Downloader, hosts ...string) {
	for _, host := range hosts {
		downloadersByHost[host] = d
	}
}

// RegisterFallback sets the downloader used for unknown hosts
func RegisterFallback(d Downloader) {
	fallbackDownloader = d
}

// Match finds the downloader for a URL using O(1) hostname lookup
func Match(rawURL string) Downloader {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	host := strings.ToLower(u.Hostname())

	if d, ok := downloadersByHost[host]; ok {
		if d.Match(u) {
			return d
		}
	}

	// Try without www. prefix
	if strings.HasPrefix(host, "www.") {
		if d, ok := downloadersByHost[host[4:]]; ok {
			if d.Match(u) {
				return d
			}
		}
	}

	return fallbackDownloader
}
