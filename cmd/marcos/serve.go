package main

import (
	"fmt"
	"log"
	"net"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"github.com/marcosbot/marcos/internal/rpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the phraser over gRPC",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default localhost:50151)")
	_ = viper.BindPFlag("grpc_addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	lis, err := net.Listen("tcp", a.cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.GRPCAddr, err)
	}

	srv := grpc.NewServer()
	rpc.Register(srv, a.phraser)

	go func() {
		<-ctx.Done()
		log.Printf("[RPC] shutting down")
		srv.GracefulStop()
	}()

	log.Printf("[RPC] %s listening on %s (db %s)", rpc.ServiceName, lis.Addr(), a.cfg.DBPath)
	if err := srv.Serve(lis); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
