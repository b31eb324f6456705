package admintools

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sciclub/clubsite/src/auth"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/roles"
	"github.com/sciclub/clubsite/src/website"
	"github.com/spf13/cobra"
)

func init() {
	adminCommand := &cobra.Command{
		Use:   "admin",
		Short: "Miscellaneous admin commands",
	}
	website.WebsiteCommand.AddCommand(adminCommand)

	var createUserPassword, createUserEmail, createUserName, createUserRole string
	createUserCommand := &cobra.Command{
		Use:   "createuser [username]",
		Short: "Creates a new user, optionally with a role",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a username.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			role := roles.None
			if createUserRole != "" {
				role = mustParseRole(createUserRole)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			tx, err := conn.Begin(ctx)
			if err != nil {
				panic(err)
			}
			defer tx.Rollback(ctx)

			user, err := clubdata.CreateUser(ctx, tx, clubdata.UserInput{
				Username: args[0],
				Email:    createUserEmail,
				Name:     createUserName,
				Password: createUserPassword,
			})
			if err != nil {
				if errors.Is(err, clubdata.ErrUsernameTaken) {
					fmt.Printf("%s already exists. Please pick a different username.\n\n", args[0])
					os.Exit(1)
				}
				panic(err)
			}

			if role != roles.None {
				err = clubdata.GrantRole(ctx, tx, user.ID, role, nil)
				if err != nil {
					panic(err)
				}
			}

			err = tx.Commit(ctx)
			if err != nil {
				panic(err)
			}

			fmt.Printf("Created user %s (id %d) with role %s.\n", user.Username, user.ID, role)
			if createUserPassword == "password" {
				fmt.Printf("The password is \"password\"; change it with `admin setpassword`.\n")
			}
		},
	}
	createUserCommand.Flags().StringVar(&createUserPassword, "password", "password", "The user's password")
	createUserCommand.Flags().StringVar(&createUserEmail, "email", "", "The user's email address")
	createUserCommand.Flags().StringVar(&createUserName, "name", "", "The user's display name")
	createUserCommand.Flags().StringVar(&createUserRole, "role", "", "A role to grant: member, editor, or admin")
	adminCommand.AddCommand(createUserCommand)

	setPasswordCommand := &cobra.Command{
		Use:   "setpassword [username] [new password]",
		Short: "Replace a user's password and log them out everywhere",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and a password.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			user := mustFetchUser(ctx, conn, args[0])

			err := auth.SetPassword(ctx, conn, user.Username, args[1])
			if err != nil {
				panic(err)
			}
			numSessions, err := auth.DeleteSessionsForUser(ctx, conn, user.Username)
			if err != nil {
				panic(err)
			}

			fmt.Printf("Successfully updated password for '%s' and ended %d session(s)\n", user.Username, numSessions)
		},
	}
	adminCommand.AddCommand(setPasswordCommand)

	grantRoleCommand := &cobra.Command{
		Use:   "grantrole [username] [member|editor|admin]",
		Short: "Grants a role to a user",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and a role.\n\n")
				cmd.Usage()
				os.Exit(1)
			}
			role := mustParseRole(args[1])

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			user := mustFetchUser(ctx, conn, args[0])
			err := clubdata.GrantRole(ctx, conn, user.ID, role, nil)
			if err != nil {
				panic(err)
			}

			printRole(ctx, conn, user)
		},
	}
	adminCommand.AddCommand(grantRoleCommand)

	revokeRoleCommand := &cobra.Command{
		Use:   "revokerole [username] [member|editor|admin]",
		Short: "Removes a role from a user",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and a role.\n\n")
				cmd.Usage()
				os.Exit(1)
			}
			role := mustParseRole(args[1])

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			user := mustFetchUser(ctx, conn, args[0])
			err := clubdata.RevokeRole(ctx, conn, user.ID, role)
			if err != nil {
				if errors.Is(err, db.NotFound) {
					fmt.Printf("%s does not have the %s role.\n", user.Username, role)
					os.Exit(1)
				}
				panic(err)
			}

			printRole(ctx, conn, user)
		},
	}
	adminCommand.AddCommand(revokeRoleCommand)

	roleCommand := &cobra.Command{
		Use:   "role [username]",
		Short: "Shows a user's effective role",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a username.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			printRole(ctx, conn, mustFetchUser(ctx, conn, args[0]))
		},
	}
	adminCommand.AddCommand(roleCommand)
}

func mustParseRole(tag string) roles.Role {
	role, err := roles.Parse(tag)
	if err != nil {
		fmt.Printf("Unknown role '%s'. Pick one of: %s, %s, %s.\n", tag, roles.TagMember, roles.TagEditor, roles.TagAdmin)
		os.Exit(1)
	}
	return role
}

func mustFetchUser(ctx context.Context, conn db.ConnOrTx, username string) *models.User {
	user, err := clubdata.FetchUserByUsername(ctx, conn, username)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			fmt.Printf("User '%s' not found\n", username)
			os.Exit(1)
		}
		panic(err)
	}
	return user
}

func printRole(ctx context.Context, conn db.ConnOrTx, user *models.User) {
	tags, err := clubdata.FetchRoleTags(ctx, conn, user.ID)
	if err != nil {
		panic(err)
	}
	role, err := clubdata.FetchEffectiveRole(ctx, conn, user.ID)
	if err != nil {
		fmt.Printf("%s has a malformed role assignment %v: %v\n", user.Username, tags, err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", user.Username)
	fmt.Printf("  Assigned roles:   %v\n", tags)
	fmt.Printf("  Effective role:   %s\n", role)
	fmt.Printf("  Can publish:      %v\n", role.CanPublish())
	fmt.Printf("  Can manage roles: %v\n", role.CanManageRoles())
}
