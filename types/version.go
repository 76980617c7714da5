package types

// Version is the canonical scrap version.
const Version = "0.3.0"

// UserAgent is sent on every search request. The endpoint serves the
// streaming answer only to browser-like clients.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:136.0) Gecko/20100101 Firefox/136.0"
