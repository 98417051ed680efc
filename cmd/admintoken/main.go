// Command admintoken mints an operator JWT for the /sessions listing.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"dailydiet/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	subject := flag.String("sub", "operator", "token subject")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Fatal("failed to read .env")
	}
	secret := os.Getenv("ADMIN_JWT_SECRET")
	if secret == "" {
		logrus.Fatal("ADMIN_JWT_SECRET is not set")
	}

	token, err := utils.GenerateAdminJWT(secret, *subject, *ttl)
	if err != nil {
		logrus.WithError(err).Fatal("failed to sign token")
	}
	fmt.Println(token)
}
