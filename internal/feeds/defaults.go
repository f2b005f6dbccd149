package feeds

// Compiled-in feed list used when FEEDS_CONFIG_PATH is not set. No webhook
// URLs are compiled in; each feed is skipped until its env variable is set.
var defaultFeeds = []Config{
	{
		Name:            "xkcd",
		URL:             "https://xkcd.com/rss.xml",
		WebhookEnv:      "XKCD_DISCORD_WEBHOOK",
		SuppressSummary: true,
	},
	{
		Name:               "spinoff",
		URL:                "https://thespinoff.co.nz/feed/",
		WebhookEnv:         "SPINOFF_DISCORD_WEBHOOK",
		CleanHTML:          true,
		PreferredImageHost: "https://images.thespinoff.co.nz",
	},
}

var defaultChannels = ChannelGroup{
	WebhookEnv: "YOUTUBE_DISCORD_WEBHOOK",
	ChannelIDs: []string{
		"UC-kM5kL9CgjN9s9pim089gg",
		"UCaN8DZdc8EHo5y1LsQWMiig",
		"UCYO_jab_esuFRV4b17AJtAw",
		"UC-LM91jkqJdWFvm9B5G-w7Q",
		"UCGzP7puUuNiDRnC6_QksAHA",
		"UCI1XS_GkLGDOgf8YLaaXNRA",
		"UCr3cBLTYmIK9kY0F_OdFWFQ",
		"UCEHCDn_BBnk3uTK1M64ptyw",
		"UC9-y-6csu5WGm29I7JiwpnA",
		"UCNvsIonJdJ5E4EXMa65VYpA",
		"UCHTM9IknXs4ZHzwHqDjakoQ",
		"UCCODtTcd5M1JavPCOr_Uydg",
		"UCuCkxoKLYO_EQ2GeFtbM_bw",
		"UCarEovlrD9QY-fy-Z6apIDQ",
		"UCv_vLHiWVBh_FR9vbeuiY-A",
		"UCN9v4QG3AQEP3zuRvVs2dAg",
		"UC1Zc6_BhPXiCWZlrZP4EsEg",
		"UCbuf70y__Wh3MRxZcbj778Q",
		"UCG1h-Wqjtwz7uUANw6gazRw",
		"UCEeL4jELzooI7cyrouQzoJg",
		"UCPdaxSov0mgwh77JvjQO2jQ",
		"UCpBRZBzWQ_cCc_9zKG08L-g",
		"UCeiYXex_fwgYDonaTcSIk6w",
		"UCUHW94eEFW7hkUMVaZz4eDg",
		"UC0intLFzLaudFG-xAvUEO-A",
		"UCoxcjq-8xIDTYp3uz647V5A",
		"UCodbH5mUeF-m_BsNueRDjcw",
		"UCedsqpl7jaIb8BiaUFuC9KQ",
		"UCdoRUr0SUpfGQC4vsXZeovg",
		"UCP5tjEmvPItGyLhmjdwP7Ww",
		"UCKUm503onGg3NatpBtTWHkQ",
		"UCYIEv9W7RmdpvFkHX7IEmyg",
		"UCaTSjmqzOO-P8HmtVW3t7sA",
		"UCBa659QWEk1AI4Tg--mrJ2A",
		"UCHnyfMqiRRG1u-2MsSQLbXA",
		"UCLXo7UDZvByw2ixzpQCufnA",
		"UCeYy3kNtk_vhVSxZhi1WGJw",
		"UCC8AgO4FbP11n_WBdFai7DA",
		"UCJQEEltSpi8LXqMH8uTrCQQ",
		"UC1YDVwTL5M_TVivEdTbfKrA",
		"UCbPHHOiOY_tA9BSytK0jDYw",
		"UCT754i47sbjkeIFSTvwqPyA",
		"UCsP7Bpw36J666Fct5M8u-ZA",
		"UC4ltK4Ozg9haG9tK8ibz3dQ",
		"UC0xnzXxUoQ5c-sdWuORrkhA",
		"UC2Kyj04yISmHr1V-UlJz4eg",
		"UC2hDF4_VrJ7t-Bvc0v0CZzw",
		"UCCR3xZ8j5Zc0UOgUGB0D6-w",
		"UCJaTzWgaz4r94ZwpT4OscIA",
		"UCsaGKqPZnGp_7N80hcHySGQ",
	},
}

// Defaults returns the compiled-in feed list with the video channels expanded.
func Defaults() []Config {
	base := make([]Config, len(defaultFeeds))
	copy(base, defaultFeeds)

	out, err := Build(base, defaultChannels)
	if err != nil {
		// The compiled-in list is static; a failure here is a programming error.
		panic(err)
	}
	return out
}
