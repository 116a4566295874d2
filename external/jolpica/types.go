package jolpica

// Wire shapes for the Ergast-compatible jolpica-f1 API. Every numeric field
// arrives as a string; normalization happens in client.go.

type raceTableEnvelope struct {
	MRData struct {
		RaceTable struct {
			Season string     `json:"season"`
			Races  []raceItem `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

type raceItem struct {
	Season         string       `json:"season"`
	Round          string       `json:"round"`
	RaceName       string       `json:"raceName"`
	Date           string       `json:"date"`
	Time           string       `json:"time"`
	FirstPractice  *sessionItem `json:"FirstPractice"`
	SecondPractice *sessionItem `json:"SecondPractice"`
	ThirdPractice  *sessionItem `json:"ThirdPractice"`
	Qualifying     *sessionItem `json:"Qualifying"`
	Sprint         *sessionItem `json:"Sprint"`
	Results        []resultItem `json:"Results"`
}

type sessionItem struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type resultItem struct {
	Number       string `json:"number"`
	Position     string `json:"position"`
	PositionText string `json:"positionText"`
	Status       string `json:"status"`
	Driver       struct {
		DriverID        string `json:"driverId"`
		PermanentNumber string `json:"permanentNumber"`
		GivenName       string `json:"givenName"`
		FamilyName      string `json:"familyName"`
	} `json:"Driver"`
	FastestLap *struct {
		Rank string `json:"rank"`
	} `json:"FastestLap"`
}
