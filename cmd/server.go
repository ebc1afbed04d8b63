package cmd

import (
	"Bt1QAuth/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动1QAuth认证服务器",
	Long:  `启动1QAuth认证服务的HTTP服务器，提供注册、登录和用户信息API`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
