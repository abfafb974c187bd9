package keygen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"github/chapool/go-near/internal/config"
	"github/chapool/go-near/internal/near/keystore"
	"github/chapool/go-near/internal/near/signer"
	"github/chapool/go-near/internal/near/types"
)

const (
	curveFlag   string = "curve"
	outDirFlag  string = "out-dir"
	encryptFlag string = "encrypt"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen <account-id>",
		Short: "Generates a key pair and writes a credentials file",
		Long: `Generates a new key pair for the account and writes it to the
credentials directory. With --encrypt the key is sealed under a passphrase.`,
		Args: cobra.ExactArgs(1),
		Run:  runKeygen,
	}
	cmd.Flags().String(curveFlag, "ed25519", "key curve: ed25519 or secp256k1")
	cmd.Flags().String(outDirFlag, "", "credentials directory (default ~/.near-credentials)")
	cmd.Flags().Bool(encryptFlag, false, "seal the key under a passphrase")
	return cmd
}

func runKeygen(cmd *cobra.Command, args []string) {
	accountID, err := types.ParseAccountID(args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid account id")
	}

	curve, err := cmd.Flags().GetString(curveFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read curve flag")
	}
	keyType, err := parseCurve(curve)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid curve")
	}

	outDir, err := cmd.Flags().GetString(outDirFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read out-dir flag")
	}
	if outDir == "" {
		if outDir, err = signer.DefaultCredentialsDir(); err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve credentials directory")
		}
	}

	encrypt, err := cmd.Flags().GetBool(encryptFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read encrypt flag")
	}

	key, err := types.GenerateSecretKey(keyType)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate key")
	}
	defer key.Zero()

	cfg := config.DefaultServiceConfigFromEnv()

	var path string
	if encrypt {
		path, err = writeSealed(outDir, string(cfg.Network), accountID, key)
	} else {
		path, err = signer.WriteCredentialsFile(outDir, string(cfg.Network), accountID, key)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to write credentials")
	}

	fmt.Printf("public key:  %s\n", key.PublicKey())
	fmt.Printf("credentials: %s\n", path)
}

func parseCurve(s string) (types.KeyType, error) {
	switch s {
	case "ed25519":
		return types.KeyTypeEd25519, nil
	case "secp256k1":
		return types.KeyTypeSecp256k1, nil
	default:
		return 0, errors.Errorf("unknown curve %q", s)
	}
}

func writeSealed(dir, network string, accountID types.AccountID, key types.SecretKey) (string, error) {
	passphrase, err := readPassphrase()
	if err != nil {
		return "", err
	}

	env, err := keystore.Seal(accountID, key, passphrase)
	if err != nil {
		return "", errors.Wrap(err, "failed to seal key")
	}
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode keystore envelope")
	}

	path := signer.CredentialsPath(dir, network, accountID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", errors.Wrap(err, "failed to create credentials directory")
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write keystore file")
	}
	return path, nil
}

func readPassphrase() (string, error) {
	fmt.Fprint(os.Stderr, "passphrase: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "failed to read passphrase")
	}

	fmt.Fprint(os.Stderr, "repeat passphrase: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "failed to read passphrase")
	}

	if string(first) != string(second) {
		return "", errors.New("passphrases do not match")
	}
	if len(first) == 0 {
		return "", errors.New("passphrase is empty")
	}
	return string(first), nil
}
