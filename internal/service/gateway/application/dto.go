// internal/service/gateway/application/dto.go

package application

import "vinylshop/internal/service/gateway/port"

// RentRequest is the public create-rental payload.
type RentRequest struct {
	CustomerID int `json:"customer_id"`
	RecordID   int `json:"record_id"`
	RentalDays int `json:"rental_days"`
}

// RecordSummary is the record slice of the availability aggregation.
type RecordSummary struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Genre      string  `json:"genre"`
	DailyPrice float64 `json:"daily_price"`
}

// Availability is the joined availability view of one record.
type Availability struct {
	AvailableCopies   int      `json:"available_copies"`
	TotalCopies       int      `json:"total_copies"`
	IsAvailable       bool     `json:"is_available"`
	CurrentlyRentedBy []string `json:"currently_rented_by"`
	NextAvailable     *string  `json:"next_available"`
}

// AvailabilityResponse joins catalog and ledger data for one record.
type AvailabilityResponse struct {
	Record       RecordSummary `json:"record"`
	Availability Availability  `json:"availability"`
}

// ProfileStatistics summarises a customer's rental history.
type ProfileStatistics struct {
	TotalRentals  int     `json:"total_rentals"`
	ActiveCount   int     `json:"active_count"`
	TotalSpent    float64 `json:"total_spent"`
	FavoriteGenre string  `json:"favorite_genre"`
}

// ProfileResponse is the aggregated customer profile.
type ProfileResponse struct {
	Customer      port.Customer     `json:"customer"`
	ActiveRentals []port.Rental     `json:"active_rentals"`
	Statistics    ProfileStatistics `json:"statistics"`
	FetchedFrom   []string          `json:"fetched_from"`
}

// CustomerSummary is the customer slice of the recommendations view.
type CustomerSummary struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	FavoriteGenre string `json:"favorite_genre"`
}

// RecommendationsResponse lists available records in the customer's
// favorite genre.
type RecommendationsResponse struct {
	Customer        CustomerSummary `json:"customer"`
	Recommendations []port.Record   `json:"recommendations"`
	TotalAvailable  int             `json:"total_available"`
	GeneratedBy     string          `json:"generated_by"`
}

// HealthResponse is the gateway's aggregated health view.
type HealthResponse struct {
	Status    string            `json:"status"`
	Gateway   string            `json:"gateway"`
	Services  map[string]string `json:"services"`
	Timestamp string            `json:"timestamp"`
}
