package youtube

// defaultBaseURL is the YouTube Data API v3 root.
const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// endpointSpec names one upstream endpoint and its fixed quota cost per call.
type endpointSpec struct {
	name string
	path string
	cost int
}

// The static cost table. search.list is two orders of magnitude more
// expensive than everything else, which is why search results are cached as
// ID lists and shaped through the cheap videos.list path.
var (
	epSearch         = endpointSpec{name: "search.list", path: "/search", cost: 100}
	epCategories     = endpointSpec{name: "videoCategories.list", path: "/videoCategories", cost: 1}
	epVideos         = endpointSpec{name: "videos.list", path: "/videos", cost: 1}
	epChannels       = endpointSpec{name: "channels.list", path: "/channels", cost: 1}
	epPlaylistItems  = endpointSpec{name: "playlistItems.list", path: "/playlistItems", cost: 1}
	epCommentThreads = endpointSpec{name: "commentThreads.list", path: "/commentThreads", cost: 1}
)

// availableCategoryIDs lists the categories eligible for the
// categories-with-videos aggregate. The rest are regional noise or retired.
var availableCategoryIDs = map[string]bool{
	"1": true, "2": true, "10": true, "15": true, "17": true, "20": true,
	"22": true, "23": true, "24": true, "25": true, "26": true, "28": true,
}

// Limits applied to the single-video aggregate.
const (
	maxVideoComments = 50
	maxRelatedVideos = 20
)
