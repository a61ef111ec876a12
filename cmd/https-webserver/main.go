// Command https-webserver installs nginx with a letsencrypt certificate on
// Ubuntu 20.04 and serves a static demo site over https.
package main

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/atomikpanda/pass/internal/actions"
	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/checks"
	"github.com/atomikpanda/pass/internal/cli"
	"github.com/atomikpanda/pass/internal/pattern"
	"github.com/atomikpanda/pass/internal/playbook"
)

const about = `Example installing nginx webserver with letsencrypt certificate.
This playbook will:
  - configure firewall (will allow ssh, http, https)
  - enable letsencrypt certificates for domain
  - configure nginx static website with https support`

const help = "For configuration you need to provide comma separated values of your email address (for letsencrypt registration) and your domain name, example:\n\n" +
	"```\napply your_email@domain.com,your_domain.com\n```"

const siteConf = "/etc/nginx/sites-enabled/pass-demo"

var (
	//go:embed main.go
	source string
	//go:embed nginx.conf
	nginxConf string
	//go:embed certbot-renew
	certbotRenew string
	//go:embed index.html
	indexHTML string
)

func parseInput(input string) (email, domain string, err error) {
	email, domain, ok := strings.Cut(input, ",")
	email, domain = strings.TrimSpace(email), strings.TrimSpace(domain)
	if !ok || email == "" || domain == "" || strings.Contains(domain, ",") {
		return "", "", errors.New(help)
	}
	return email, domain, nil
}

func webserver(input string) (*playbook.Playbook, error) {
	email, domain, err := parseInput(input)
	if err != nil {
		return nil, err
	}
	check := capability.NamedCheck
	action := capability.NamedAction
	defaultSite := "/etc/nginx/sites-enabled/default"

	return playbook.New("Install and configure nginx with https", about,
		[]capability.Check{
			checks.UserIsRoot(),
			check("Os is Ubuntu 20.04", checks.StdoutContainsOnce(pattern.Text("Ubuntu 20.04"), "lsb_release", "-a")),
		},
		playbook.Step(action("Upgrade apt packages", capability.Many(
			actions.Command("apt", "update", "-y"),
			actions.Command("apt", "upgrade", "-y"),
		))),
		playbook.Step(actions.InstallAptPackages("nginx", "certbot")),
		playbook.Step(action("Configure firewall", capability.Many(
			actions.Command("ufw", "allow", "ssh"),
			actions.Command("ufw", "allow", "http"),
			actions.Command("ufw", "allow", "https"),
			actions.Command("ufw", "default", "deny", "incoming"),
			actions.Command("ufw", "default", "allow", "outgoing"),
		))).WithEnv(check("Firewall is inactive", checks.StdoutContainsOnce(pattern.Text("Status: inactive"), "ufw", "status"))),
		playbook.Named("Stop nginx", actions.StopService("nginx")),
		playbook.Named("Request ssl certificate", actions.Command(
			"certbot", "certonly", "--standalone", "--agree-tos", "--no-eff-email", "-m", email, "-d", domain,
		)).
			WithEnv(check("Nginx is inactive", checks.ServiceIsInactive("nginx"))).
			Confirm(check("Ssl certificate exists", checks.IsFile(fmt.Sprintf("/etc/letsencrypt/live/%s/fullchain.pem", domain)))),
		playbook.Named("Enable certbot renew", actions.WriteFilePerm("/etc/cron.weekly/certbot-renew", []byte(certbotRenew), actions.Perm(0o555, "root"))).
			Confirm(check("Certbot renew is enabled", checks.IsFile("/etc/cron.weekly/certbot-renew"))),
		playbook.Named("Delete default nginx site", actions.DeleteFile(defaultSite)).
			Confirm(check("Default nginx site deleted", capability.Not(checks.IsFile(defaultSite)))),
		playbook.Named("Create pass demo site nginx configuration", actions.WriteFile(siteConf, []byte(strings.ReplaceAll(nginxConf, "DOMAIN", domain)))).
			Confirm(check("Pass demo site nginx configuration exists", checks.IsFile(siteConf))),
		playbook.Named("Create website files", capability.Many(
			actions.CreateDirPerm("/srv/pass-demo-site", actions.Perm(0o774, "www-data")),
			actions.WriteFilePerm("/srv/pass-demo-site/index.html", []byte(indexHTML), actions.Perm(0o664, "www-data")),
		)),
		playbook.Named("Start nginx", actions.StartService("nginx")),
		playbook.Named("Start firewall", actions.StartService("ufw")),
		playbook.Named("Enable firewall", actions.Command("ufw", "--force", "enable")),
	), nil
}

func main() {
	cli.RunWithInput(webserver, help, source)
}
