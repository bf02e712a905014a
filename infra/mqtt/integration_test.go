package mqtt

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/evrange/core/routefetch"
)

// TestStatusPublisherIntegration publishes through a real Mosquitto broker.
func TestStatusPublisherIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	dir := t.TempDir()
	conf := dir + "/mosquitto.conf"
	require.NoError(t, os.WriteFile(conf, []byte("listener 1883\nallow_anonymous true\npersistence false\n"), 0o644))

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{{
				HostFilePath:      conf,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "1883")
	require.NoError(t, err)
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	got := make(chan []byte, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	var tok paho.Token
	require.Eventually(t, func() bool {
		tok = sub.Connect()
		return tok.Wait() && tok.Error() == nil
	}, 10*time.Second, 250*time.Millisecond)
	defer sub.Disconnect(100)
	tok = sub.Subscribe(DefaultStatusTopic, 1, func(_ paho.Client, m paho.Message) { got <- m.Payload() })
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())

	pub, err := NewStatusPublisher(Config{Broker: broker, ClientID: "pub", QoS: 1})
	require.NoError(t, err)
	defer pub.Disconnect()
	require.NoError(t, pub.Publish(routefetch.Status{FetchID: "f1", State: routefetch.StateQueryingRoute, Message: "Getting route...", Time: time.Now()}))

	select {
	case payload := <-got:
		assert.Contains(t, string(payload), `"state":"querying_route"`)
	case <-time.After(5 * time.Second):
		t.Fatal("status not received")
	}
}
