package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jessevdk/go-flags"
)

var opts struct {
	Username string `short:"u" long:"username" description:"Username to register" required:"true"`
	Password string `short:"p" long:"password" description:"Password for the new user" required:"true"`
	Server   string `short:"s" long:"server" description:"Server base URL" default:"http://localhost:8080"`
}

func main() {
	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(1)
	}

	body, err := json.Marshal(map[string]string{
		"username": opts.Username,
		"password": opts.Password,
	})
	if err != nil {
		log.Panicf("%+v", err)
	}

	resp, err := http.Post(opts.Server+"/register", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Panicf("%+v", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Panicf("%+v", err)
	}

	fmt.Println(result.Message)
	if !result.Success {
		os.Exit(1)
	}
}
