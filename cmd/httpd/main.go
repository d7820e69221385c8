// Package main runs a small server built on the netlib pipeline.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiaoliukai/cpp-netlib/pkg/netlib"
)

func main() {
	logger := log.New(os.Stdout, "httpd: ", log.LstdFlags)

	config := netlib.DefaultConfig()
	config.Logger = logger
	if addr := os.Getenv("HTTPD_ADDR"); addr != "" {
		config.Addr = addr
	}

	handler := netlib.Chain(
		netlib.Recovery(),
		netlib.AccessLog(),
		netlib.Prometheus(),
		netlib.Tracing(),
		netlib.Compress(),
	)(netlib.HandlerFunc(route))

	server := netlib.New(config)
	if err := server.ListenAndServe(handler); err != nil {
		logger.Fatalf("starting server: %v", err)
	}
	logger.Printf("serving on %s", config.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}

func route(ctx *netlib.Context) error {
	switch {
	case ctx.Method() == "GET" && ctx.Target() == "/":
		return ctx.String(200, "hello from netlib\n")
	case ctx.Method() == "GET" && ctx.Target() == "/json":
		return ctx.JSON(200, map[string]string{"status": "ok"})
	case ctx.Method() == "POST" && ctx.Target() == "/echo":
		ctx.SetStatus(200)
		ctx.SetHeader("content-type", ctx.RequestHeader("content-type"))
		_, _ = ctx.Write(ctx.Body())
		return nil
	default:
		return ctx.String(404, "not found\n")
	}
}
