// Command initdata генерирует и проверяет подписанные initData для
// локальной разработки, когда под рукой нет настоящего Telegram WebApp.
//
// Сгенерировать:
//
//	initdata -token <bot-token> -id 123456789 -first-name Ivan -username ivan
//
// Проверить:
//
//	initdata -token <bot-token> -verify '<initData>'
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/maxzer/booking/internal/telegram"
)

func main() {
	var (
		botToken  = flag.String("token", os.Getenv("TELEGRAM_BOT_TOKEN"), "bot token (default from TELEGRAM_BOT_TOKEN)")
		id        = flag.Int64("id", 123456789, "telegram user id")
		firstName = flag.String("first-name", "Test", "first name")
		lastName  = flag.String("last-name", "", "last name")
		username  = flag.String("username", "testuser", "username")
		age       = flag.Duration("age", 0, "age of auth_date (e.g. 25h to make it stale)")
		verify    = flag.String("verify", "", "initData string to verify instead of generating")
	)
	flag.Parse()

	if *botToken == "" {
		fmt.Fprintln(os.Stderr, "bot token is required: -token or TELEGRAM_BOT_TOKEN")
		os.Exit(1)
	}

	if *verify != "" {
		if telegram.Verify(*verify, *botToken) {
			fmt.Println("valid")
			return
		}
		fmt.Println("INVALID")
		os.Exit(1)
	}

	user := map[string]any{
		"id":         *id,
		"first_name": *firstName,
	}
	if *lastName != "" {
		user["last_name"] = *lastName
	}
	if *username != "" {
		user["username"] = *username
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal user: %v\n", err)
		os.Exit(1)
	}

	params := url.Values{}
	params.Set("user", string(userJSON))
	params.Set("auth_date", strconv.FormatInt(time.Now().Add(-*age).Unix(), 10))
	params.Set("query_id", "AAH"+strconv.FormatInt(*id, 10))

	fmt.Println(telegram.Sign(params, *botToken))
}
