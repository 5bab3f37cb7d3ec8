package timeline

// ExampleDocument returns a fixed demo document, independent of any input.
// Callers may show it when a conversion fails.
func ExampleDocument() *Document {
	intPtr := func(n int) *int { return &n }
	return &Document{
		Title: Title{
			Text: TitleText{Headline: "Example Timeline"},
			Background: &BackgroundBlock{
				Color: "#1f2937",
			},
		},
		Events: []Event{
			{
				StartDate: DatePart{Year: 1969, Month: intPtr(7), Day: intPtr(20)},
				Text: EventText{
					Headline: "Moon landing",
					Text:     "Apollo 11 lands on the Moon.",
				},
				Group:    "Space",
				UniqueID: "example-moon-landing",
			},
			{
				StartDate: DatePart{Year: 1989, Month: intPtr(11), Day: intPtr(9)},
				Text: EventText{
					Headline: "Fall of the Berlin Wall",
					Text:     "The border between East and West Berlin opens.",
				},
				Group:    "Politics",
				UniqueID: "example-berlin-wall",
			},
			{
				StartDate: DatePart{Year: 1991, Month: intPtr(8), Day: intPtr(6)},
				EndDate:   &DatePart{Year: 1993, Month: intPtr(4), Day: intPtr(30)},
				Text: EventText{
					Headline: "The web goes public",
					Text:     "The first website is published and the web enters the public domain.",
				},
				Group:       "Technology",
				UniqueID:    "example-web",
				DisplayDate: "1991 to 1993",
			},
		},
	}
}
