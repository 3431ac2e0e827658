package events

import "github.com/r3labs/sse/v2"

// Stream names clients can subscribe to.
const (
	// StreamOpenVideo carries requests to open a video from outside the
	// normal click path (suggested panel, shuffle-on-end).
	StreamOpenVideo = "openvideo"
	// StreamThumbnails announces finished thumbnail derivations.
	StreamThumbnails = "thumbnails"
	// StreamCatalog pings clients that the catalog changed and they
	// should rehydrate.
	StreamCatalog = "catalog"
)

var Server *sse.Server

func Init() {
	server := sse.New()
	server.AutoReplay = false
	Server = server
	server.CreateStream(StreamOpenVideo)
	server.CreateStream(StreamThumbnails)
	server.CreateStream(StreamCatalog)
}
