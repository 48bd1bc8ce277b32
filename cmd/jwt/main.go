// Mints an HS256 bearer token for local testing of the upload endpoint.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "user_id claim (default: random uuid)")
	email := flag.String("email", "dev@genserve.ai", "email claim")
	audience := flag.String("aud", "genserve.ai", "audience claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		log.Fatal("SECRET_KEY not set")
	}
	if *userID == "" {
		*userID = uuid.NewString()
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": *userID,
		"email":   *email,
		"aud":     *audience,
		"iat":     now.Unix(),
		"exp":     now.Add(*ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}
