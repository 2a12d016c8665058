package main

import (
	"github.com/spf13/cobra"

	"github.com/xiebiao/bookstore-ledger/pkg/jwt"
)

// 账号体系在外部,本地调试时用这个命令签发Token
func newTokenCmd(e *env) *cobra.Command {
	var (
		userID uint
		role   string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发调试用的Access/Refresh Token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := jwt.NewManager(e.cfg.JWT.Secret, e.cfg.JWT.AccessTokenExpire, e.cfg.JWT.RefreshTokenExpire)
			pair, err := m.GenerateToken(userID, role)
			if err != nil {
				return err
			}
			return printJSON(cmd, pair)
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "用户ID")
	cmd.Flags().StringVar(&role, "role", jwt.RoleCustomer, "角色: customer | admin")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
