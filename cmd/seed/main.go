package main

import (
	"context"
	"log"
	"os"

	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/repository"
)

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = "staybook.db"
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM reviews")
	db.Exec("DELETE FROM payment_intents")
	db.Exec("DELETE FROM holds")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM room_types")
	db.Exec("DELETE FROM hotels")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	hotels := repository.NewHotelRepository(db)
	roomTypes := repository.NewRoomTypeRepository(db)

	log.Println("Creating users...")
	ops := domain.User{Email: "ops@staybook.kz", Name: "Operations", Role: domain.RoleOps}
	if err := users.Create(ctx, &ops); err != nil {
		log.Fatal("seed ops user failed:", err)
	}
	guests := []domain.User{
		{Email: "asel@mail.kz", Name: "Asel", Role: domain.RoleGuest},
		{Email: "bekzat@gmail.com", Name: "Bekzat", Role: domain.RoleGuest},
		{Email: "dina@yandex.kz", Name: "Dina", Role: domain.RoleGuest},
	}
	for i := range guests {
		if err := users.Create(ctx, &guests[i]); err != nil {
			log.Fatal("seed guest failed:", err)
		}
	}

	log.Println("Creating hotels...")
	seedHotels := []struct {
		hotel domain.Hotel
		rooms []domain.RoomType
	}{
		{
			hotel: domain.Hotel{Name: "Marina Bay Almaty", City: "Almaty", Address: "Dostyk ave 52", Stars: 5,
				Description: "Business hotel near the financial district."},
			rooms: []domain.RoomType{
				{Name: "Standard Double", NightlyPrice: 120, TotalQuantity: 20, Capacity: 2, IsActive: true},
				{Name: "Deluxe King", NightlyPrice: 190, TotalQuantity: 10, Capacity: 2, IsActive: true},
				{Name: "Family Suite", NightlyPrice: 310, TotalQuantity: 4, Capacity: 4, IsActive: true},
			},
		},
		{
			hotel: domain.Hotel{Name: "Steppe View", City: "Astana", Address: "Turan 37", Stars: 4,
				Description: "Modern rooms on the left bank."},
			rooms: []domain.RoomType{
				{Name: "Standard Twin", NightlyPrice: 85, TotalQuantity: 30, Capacity: 2, IsActive: true},
				{Name: "Junior Suite", NightlyPrice: 150, TotalQuantity: 8, Capacity: 3, IsActive: true},
			},
		},
		{
			hotel: domain.Hotel{Name: "Caspian Pearl", City: "Aktau", Address: "Microdistrict 4", Stars: 3,
				Description: "Seafront rooms, seasonal pricing."},
			rooms: []domain.RoomType{
				{Name: "Sea View Double", NightlyPrice: 95, TotalQuantity: 15, Capacity: 2, IsActive: true},
				{Name: "Single", NightlyPrice: 60, TotalQuantity: 1, Capacity: 1, IsActive: true},
			},
		},
	}

	for _, sh := range seedHotels {
		h := sh.hotel
		if err := hotels.Create(ctx, &h); err != nil {
			log.Fatal("seed hotel failed:", err)
		}
		for _, rt := range sh.rooms {
			rt.HotelID = h.ID
			if err := roomTypes.Create(ctx, &rt); err != nil {
				log.Fatal("seed room type failed:", err)
			}
		}
		log.Printf("Seeded %s (%d room types)", h.Name, len(sh.rooms))
	}

	log.Println("Seed completed")
}
