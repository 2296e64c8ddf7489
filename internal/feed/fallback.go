package feed

// Offline content served when the primary feed cannot be fetched. Every
// accessor builds fresh values so callers can never alter the pools.

const commonsThumb = "https://upload.wikimedia.org/wikipedia/commons/thumb/"

// FallbackFeaturedPool lists the featured-article variants.
func FallbackFeaturedPool() []Article {
	return []Article{
		{
			ID:           "Wikipedia",
			DisplayTitle: "Web (Wikipedia)",
			Extract:      "The fundamental concept of Wikipedia is that anyone can edit it. This page is served from static fallback data because the live API connection failed.",
			ThumbnailURL: commonsThumb + "8/80/Wikipedia-logo-v2.svg/200px-Wikipedia-logo-v2.svg.png",
		},
		{
			ID:           "React_Native",
			DisplayTitle: "React Native",
			Extract:      "React Native is an open-source UI software framework created by Meta Platforms, Inc. It is used to develop applications for Android, Android TV, iOS, macOS, tvOS, Web, Windows and UWP.",
			ThumbnailURL: commonsThumb + "a/a7/React-icon.svg/200px-React-icon.svg.png",
		},
		{
			ID:           "Capybara",
			DisplayTitle: "Capybara",
			Extract:      "The capybara is the largest living rodent in the world. Also called chigüire and carpincho, it is a member of the genus Hydrochoerus, of which the only other extant member is the lesser capybara.",
			ThumbnailURL: commonsThumb + "e/ec/Capybara_%28Hydrochoeris_hydrochaeris%29.jpg/200px-Capybara_%28Hydrochoeris_hydrochaeris%29.jpg",
		},
	}
}

// FallbackNewsPool lists the in-the-news variants; one whole list is picked.
func FallbackNewsPool() [][]NewsItem {
	return [][]NewsItem{
		{
			{
				StoryText:    "SpaceX successfully launches Starship on its fifth test flight, catching the booster with 'Mechazilla' arms.",
				ThumbnailURL: commonsThumb + "e/ee/Starship_S24_on_suborbital_pad_A.jpg/200px-Starship_S24_on_suborbital_pad_A.jpg",
			},
			{StoryText: "The Nobel Prize in Physics is awarded to John Hopfield and Geoffrey Hinton for discoveries in artificial neural networks."},
		},
		{
			{
				StoryText:    "NASA's Europa Clipper launches on a mission to study Jupiter's moon Europa for signs of habitability.",
				ThumbnailURL: commonsThumb + "5/54/Europa-moon-with-jupiter.jpg/200px-Europa-moon-with-jupiter.jpg",
			},
			{StoryText: "Han Kang becomes the first South Korean author to win the Nobel Prize in Literature."},
		},
		{
			{
				StoryText:    "Hurricane Milton makes landfall in Florida as a Category 3 storm, causing widespread power outages.",
				ThumbnailURL: commonsThumb + "0/04/Hurricane_Isabel_from_ISS.jpg/200px-Hurricane_Isabel_from_ISS.jpg",
			},
			{StoryText: "Rafael Nadal announces his retirement from professional tennis after the Davis Cup finals."},
		},
		{
			{
				StoryText:    "Researchers discover a new species of giant dinosaur in Patagonia.",
				ThumbnailURL: commonsThumb + "6/6f/Argentinosaurus_reconstruction.jpg/200px-Argentinosaurus_reconstruction.jpg",
			},
			{StoryText: "Global tech summit announces breakthrough in quantum computing stability."},
		},
	}
}

func fallbackMostRead() []ArticleSummary {
	return []ArticleSummary{
		{ID: "React_Native", DisplayTitle: "React Native", ViewCount: 12403, ThumbnailURL: commonsThumb + "a/a7/React-icon.svg/200px-React-icon.svg.png"},
		{ID: "TypeScript", DisplayTitle: "TypeScript", ViewCount: 8920, ThumbnailURL: commonsThumb + "4/4c/Typescript_logo_2020.svg/200px-Typescript_logo_2020.svg.png"},
		{ID: "Expo_(framework)", DisplayTitle: "Expo (framework)", ViewCount: 5100, ThumbnailURL: commonsThumb + "3/30/Expo_Combinations_Logomark.svg/200px-Expo_Combinations_Logomark.svg.png"},
	}
}

func fallbackPicture() *Image {
	return &Image{
		Title:           "Picture of the day",
		ThumbnailURL:    commonsThumb + "c/c8/Altja_j%C3%B5gi_Lahemaal.jpg/640px-Altja_j%C3%B5gi_Lahemaal.jpg",
		DescriptionText: "A beautiful river landscape in Lahemaa National Park, Estonia.",
	}
}

func fallbackOnThisDay() []HistoryEvent {
	return []HistoryEvent{
		{
			Year: 2023,
			Text: "Wikipedia continues to be a free encyclopedia that anyone can edit.",
			RelatedPages: []Article{
				{ID: "Wikipedia", DisplayTitle: "Wikipedia", ThumbnailURL: commonsThumb + "6/63/Wikipedia-logo.png/200px-Wikipedia-logo.png"},
			},
		},
	}
}

// FallbackBundle builds a fully populated offline bundle. The featured
// article and the news list are sampled from their pools with intN; the
// remaining fields are fixed.
func FallbackBundle(intN IntN) FeaturedBundle {
	if intN == nil {
		intN = DefaultIntN
	}

	featured := FallbackFeaturedPool()
	news := FallbackNewsPool()
	tfa := featured[intN(len(featured))]

	return FeaturedBundle{
		FeaturedArticle: &tfa,
		PictureOfDay:    fallbackPicture(),
		MostRead:        fallbackMostRead(),
		InTheNews:       news[intN(len(news))],
		OnThisDay:       fallbackOnThisDay(),
	}
}

// FallbackRandomArticle is the fixed placeholder for an unreachable random endpoint.
func FallbackRandomArticle() RandomArticle {
	return RandomArticle{
		ID:           "Soccer_ball",
		DisplayTitle: "Random Fallback",
		Extract:      "This is a random article placeholder shown when the API is unreachable.",
		ThumbnailURL: commonsThumb + "e/ec/Soccer_ball.svg/200px-Soccer_ball.svg.png",
	}
}
