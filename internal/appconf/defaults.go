package appconf

const (
	locationCollege = "Collège de Bois-de-Boulogne"
	locationOuest   = "Henri-Bourassa/du Bois-de-Boulogne"
)

// Default returns the Bois-de-Boulogne deployment.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:      4000,
			Env:       "development",
			RateLimit: 10,
			RateBurst: 20,
		},
		Timezone:     "America/Montreal",
		MessagesFile: "custom_messages.json",
		Fetch: FetchConfig{
			TimeoutMS:  10000,
			MaxRetries: 2,
		},
		Bus: BusConfig{
			Static: StaticSource{Dir: "data/stm"},
			Feeds: AgencyFeeds{
				TripUpdates:      "https://api.stm.info/pub/od/gtfs-rt/ic/v2/tripUpdates",
				VehiclePositions: "https://api.stm.info/pub/od/gtfs-rt/ic/v2/vehiclePositions",
				Alerts:           "https://api.stm.info/pub/od/i3/v2/messages/etatservice",
				AlertsFormat:     "stm-json",
				Auth:             FeedAuth{Header: "apiKey"},
			},
			Combos: []Combo{
				{Route: "171", Stop: "50270", Direction: "Est", Location: locationCollege},
				{Route: "171", Stop: "62374", Direction: "Ouest", Location: locationOuest},
				{Route: "180", Stop: "50270", Direction: "Est", Location: locationCollege},
				{Route: "180", Stop: "62374", Direction: "Ouest", Location: locationOuest},
				{Route: "164", Stop: "50270", Direction: "Est", Location: locationCollege},
			},
			AtStopMinutes: 2,
			Alerts: BusAlerts{
				Routes:     []string{"171", "180", "164"},
				Directions: []string{"W", "E"},
				StopCodes:  []string{"50270", "62374"},
				StopNames: map[string]string{
					"50270": locationCollege,
					"62374": locationOuest,
				},
			},
		},
		Rail: RailConfig{
			Static: StaticSource{Dir: "data/exo"},
			Feeds: AgencyFeeds{
				TripUpdates:      "https://opendata.exo.quebec/ServiceGTFSR/TripUpdate.pb",
				VehiclePositions: "https://opendata.exo.quebec/ServiceGTFSR/VehiclePosition.pb",
				Alerts:           "https://opendata.exo.quebec/ServiceGTFSR/Alert.pb",
				AlertsFormat:     "protobuf",
				Auth:             FeedAuth{Query: "token"},
			},
			Stops:       []string{"MTL7D", "MTL7B", "MTL59A", "MTL59C"},
			RouteLabels: map[string]string{"4": "12", "6": "15"},
			Directions: map[string]map[string]string{
				"4": {"0": "Lucien-L'allier", "1": "Saint-Jérôme"},
				"6": {"0": "Gare centrale", "1": "Mascouche"},
			},
			StopNames: map[string]string{
				"MTL7B":  "Gare Bois-de-Boulogne",
				"MTL7D":  "Gare Bois-de-Boulogne",
				"MTL59A": "Gare Ahuntsic",
				"MTL59C": "Gare Ahuntsic",
			},
			AlertLabels: map[string]string{
				"MTL7D":  "Dir Lucien l'Allier",
				"MTL7B":  "Saint-Jérôme",
				"MTL59A": "Mascouche",
				"MTL59C": "Ahuntsic",
			},
			AtStopMinutes: 2,
			NoServiceFile: "no_service_days.txt",
		},
		Weather: WeatherConfig{
			BaseURL:    "https://api.weatherapi.com/v1",
			Query:      "Montreal",
			Lang:       "fr",
			TTLSeconds: 300,
		},
	}
}
