// Package factory is a generic registry that builds modules, such as metrics
// sinks, from a type name and a raw settings map taken from the
// configuration file.
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	_ = reg.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//		var c InfluxConfig
//		if err := factory.Decode(conf, &c); err != nil {
//			return nil, err
//		}
//		return NewInfluxSink(c), nil
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: raw})
package factory
